package notify

import (
	"image"
	"image/color"
	"os"

	"gioui.org/app"
	gfont "gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

var (
	dialogSuccess = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	dialogError   = color.NRGBA{R: 244, G: 67, B: 54, A: 255}
)

// Dialog shows a message in a modal Gio window with a single OK button.
//
// Gio owns the main goroutine once app.Main is called, so Notify never
// returns: when the window closes OnClose runs, and by default the process
// exits with ExitStatus of the message.
type Dialog struct {
	OnClose func(err error)
}

// ExitStatus is the process status matching a message: 1 for errors.
func ExitStatus(m Message) int {
	if m.Kind == Error {
		return 1
	}
	return 0
}

func (d *Dialog) Notify(m Message) error {
	onClose := d.OnClose
	if onClose == nil {
		onClose = func(err error) {
			code := ExitStatus(m)
			if err != nil {
				code = 1
			}
			os.Exit(code)
		}
	}

	go func() {
		w := new(app.Window)
		w.Option(
			app.Title(m.Title),
			app.Size(unit.Dp(480), unit.Dp(280)),
		)
		onClose(runDialog(w, m))
	}()
	app.Main()
	return nil
}

type dialogState struct {
	msg    Message
	th     *theme.Theme
	icon   *widget.Icon
	accent color.NRGBA
	ok     widget.Clickable
}

func runDialog(w *app.Window, m Message) error {
	st := &dialogState{
		msg:    m,
		th:     theme.NewTheme("", nil, true),
		accent: dialogSuccess,
	}
	iconData := icons.ActionCheckCircle
	if m.Kind == Error {
		st.accent = dialogError
		iconData = icons.AlertError
	}
	if icon, err := widget.NewIcon(iconData); err == nil {
		st.icon = icon
	}

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			// Enter and Escape dismiss the dialog like the OK button.
			for {
				ev, ok := gtx.Event(
					key.Filter{Name: key.NameReturn},
					key.Filter{Name: key.NameEnter},
					key.Filter{Name: key.NameEscape},
				)
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					w.Perform(system.ActionClose)
				}
			}
			if st.ok.Clicked(gtx) {
				w.Perform(system.ActionClose)
			}

			st.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (st *dialogState) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, st.th.Palette.Bg)

	return layout.UniformInset(unit.Dp(20)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(st.layoutHeader),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.Body1(st.th.Theme, st.msg.Body).Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.E.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(st.th.Theme, &st.ok, "OK")
					btn.Background = st.accent
					return btn.Layout(gtx)
				})
			}),
		)
	})
}

func (st *dialogState) layoutHeader(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if st.icon == nil {
				return layout.Dimensions{}
			}
			size := gtx.Dp(unit.Dp(32))
			gtx.Constraints = layout.Exact(image.Pt(size, size))
			return st.icon.Layout(gtx, st.accent)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			label := material.H6(st.th.Theme, st.msg.Title)
			label.Font.Weight = gfont.Bold
			return label.Layout(gtx)
		}),
	)
}

package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#4CAF50")
	colorError   = lipgloss.Color("#F44336")
)

// Terminal prints messages as a bordered box.
type Terminal struct {
	out      io.Writer
	renderer *lipgloss.Renderer
}

// NewTerminal creates a terminal notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, renderer: lipgloss.NewRenderer(out)}
}

func (t *Terminal) Notify(m Message) error {
	accent := colorSuccess
	if m.Kind == Error {
		accent = colorError
	}

	title := t.renderer.NewStyle().Bold(true).Foreground(accent).Render(m.Title)
	box := t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)

	_, err := fmt.Fprintln(t.out, box.Render(title+"\n\n"+m.Body))
	return err
}

// Package notify presents the outcome of an export run to the user as a
// single message: a modal Gio dialog, a terminal box, or nothing at all.
package notify

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/fabexport/pkg/fab"
)

// Kind distinguishes success from failure messages.
type Kind int

const (
	Info Kind = iota
	Error
)

// Message is what the user sees once a run is over.
type Message struct {
	Kind  Kind
	Title string
	Body  string
}

// Notifier renders a message.
type Notifier interface {
	Notify(Message) error
}

// Func adapts a function to Notifier.
type Func func(Message) error

func (f Func) Notify(m Message) error { return f(m) }

// Discard drops every message.
var Discard Notifier = Func(func(Message) error { return nil })

// Recorder keeps every message it is given.
type Recorder struct {
	Messages []Message
}

func (r *Recorder) Notify(m Message) error {
	r.Messages = append(r.Messages, m)
	return nil
}

// Compose turns an export result into the message shown to the user.
func Compose(res fab.Result) Message {
	if !res.OK() {
		return Message{
			Kind:  Error,
			Title: "Error",
			Body:  "Error en la exportación:\n" + res.Message(),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Archivos exportados correctamente en:\n%s\n\n", res.OutputDir)
	b.WriteString("Contenido:\n")
	fmt.Fprintf(&b, "- Gerbers: %d capas\n", len(res.Layers))
	fmt.Fprintf(&b, "- BOM (Lista de materiales): %d líneas\n", res.BOMRows)
	fmt.Fprintf(&b, "- Posiciones de componentes: %d", res.PlacementRows)

	return Message{
		Kind:  Info,
		Title: "Exportación Exitosa",
		Body:  b.String(),
	}
}

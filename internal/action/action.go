// Package action describes user-invokable export actions and the registry
// bootstrap code registers them with. Nothing registers itself on import.
package action

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/fabexport/internal/config"
	"github.com/OpenTraceLab/fabexport/pkg/fab"
	"go.uber.org/zap"
)

// Descriptor is the metadata a host shows for an action.
type Descriptor struct {
	Name              string
	Category          string
	Description       string
	Command           string // CLI verb that triggers the action
	ShowToolbarButton bool
	IconFile          string
	DarkIconFile      string
}

// Invocation carries everything an action needs for one run.
type Invocation struct {
	BoardFile  string
	ConfigPath string         // optional explicit config file
	Config     *config.Config // already loaded; nil loads it for BoardFile
	Logger     *zap.Logger
}

// Action pairs a descriptor with the function that runs it.
type Action struct {
	Descriptor
	Run func(ctx context.Context, inv Invocation) fab.Result
}

// Registry accepts actions from bootstrap code.
type Registry interface {
	Register(Action) error
}

// ErrDuplicate is returned when an action name or command is already taken.
var ErrDuplicate = errors.New("action already registered")

// List is an in-memory Registry.
type List struct {
	actions []Action
}

func (l *List) Register(a Action) error {
	if a.Name == "" || a.Command == "" {
		return errors.New("action needs a name and a command")
	}
	if a.Run == nil {
		return fmt.Errorf("action %q has no Run function", a.Name)
	}
	for _, existing := range l.actions {
		if existing.Name == a.Name || existing.Command == a.Command {
			return fmt.Errorf("%w: %q", ErrDuplicate, a.Name)
		}
	}
	l.actions = append(l.actions, a)
	return nil
}

// Lookup finds an action by its command verb.
func (l *List) Lookup(command string) (Action, bool) {
	for _, a := range l.actions {
		if a.Command == command {
			return a, true
		}
	}
	return Action{}, false
}

// All returns the registered actions sorted by category, then name.
func (l *List) All() []Action {
	out := append([]Action(nil), l.actions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

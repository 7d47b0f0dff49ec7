// Package command holds the reversible edits recorded by the undo stack.
//
// A command captures one feature mutation of a model object together with
// whatever it needs to reverse it. Commands built from change notifications
// describe a mutation that already happened and are created executed.
package command

import (
	"errors"
	"fmt"

	"github.com/mapeditor/esdlcore/model"
)

var (
	// ErrInvalidState is returned when Execute, Undo or Redo is called out of
	// sequence.
	ErrInvalidState = errors.New("command in invalid state")
)

// Kind identifies a command variant.
type Kind int

const (
	KindSet Kind = iota + 1
	KindUnset
	KindAdd
	KindRemove
	KindMove
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindUnset:
		return "unset"
	case KindAdd:
		return "add"
	case KindRemove:
		return "remove"
	case KindMove:
		return "move"
	case KindAction:
		return "action"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is a reversible edit.
type Command interface {
	fmt.Stringer

	Execute() error
	Undo() error
	Redo() error

	CanExecute() bool
	CanUndo() bool

	// Executed reports whether the effect of the command is currently applied.
	Executed() bool

	// MarkExecuted flags the command as already applied.
	MarkExecuted()

	Kind() Kind
	Label() string
}

// FeatureCommand is a command acting on one feature of one object.
type FeatureCommand interface {
	Command

	Owner() *model.Object
	Feature() *model.Feature

	// Value is the value set, added, removed or moved (the previous value
	// for Unset).
	Value() any
}

type base struct {
	owner    *model.Object
	feature  *model.Feature
	executed bool
	label    string
}

func (b *base) Owner() *model.Object { return b.owner }

func (b *base) Feature() *model.Feature { return b.feature }

func (b *base) Executed() bool { return b.executed }

func (b *base) MarkExecuted() { b.executed = true }

func (b *base) CanUndo() bool { return b.executed && b.valid() }

// SetLabel overrides the label reported by Label.
func (b *base) SetLabel(label string) { b.label = label }

func (b *base) valid() bool { return b.owner != nil && b.feature != nil }

func (b *base) labelOr(def string) string {
	if b.label != "" {
		return b.label
	}
	return def
}

func invalidState(op string, c Command) error {
	return fmt.Errorf("%w: cannot %s %s", ErrInvalidState, op, c)
}

func featureName(f *model.Feature) string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

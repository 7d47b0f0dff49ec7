package command

import (
	"errors"
	"fmt"
	"strings"
)

// LabeledAction groups commands into one named, atomically undoable step.
// Members run forward on Execute and Redo and backward on Undo.
type LabeledAction struct {
	label    string
	commands []Command
}

// NewLabeledAction returns an action holding cmds.
func NewLabeledAction(label string, cmds ...Command) *LabeledAction {
	return &LabeledAction{label: label, commands: cmds}
}

func (a *LabeledAction) Kind() Kind { return KindAction }

func (a *LabeledAction) Label() string { return a.label }

// Append adds members at the end of the action.
func (a *LabeledAction) Append(cmds ...Command) {
	a.commands = append(a.commands, cmds...)
}

// Len returns the number of members.
func (a *LabeledAction) Len() int {
	return len(a.commands)
}

// Commands returns the members in recording order.
func (a *LabeledAction) Commands() []Command {
	out := make([]Command, len(a.commands))
	copy(out, a.commands)
	return out
}

// Last returns the most recently appended member, or nil.
func (a *LabeledAction) Last() Command {
	if len(a.commands) == 0 {
		return nil
	}
	return a.commands[len(a.commands)-1]
}

// Unwrap returns the only member of a single-command action, or a itself.
func (a *LabeledAction) Unwrap() Command {
	if len(a.commands) == 1 {
		return a.commands[0]
	}
	return a
}

func (a *LabeledAction) Executed() bool {
	if len(a.commands) == 0 {
		return false
	}
	for _, c := range a.commands {
		if !c.Executed() {
			return false
		}
	}
	return true
}

func (a *LabeledAction) MarkExecuted() {
	for _, c := range a.commands {
		c.MarkExecuted()
	}
}

func (a *LabeledAction) CanExecute() bool {
	for _, c := range a.commands {
		if !c.CanExecute() {
			return false
		}
	}
	return len(a.commands) > 0
}

func (a *LabeledAction) CanUndo() bool {
	for _, c := range a.commands {
		if !c.CanUndo() {
			return false
		}
	}
	return len(a.commands) > 0
}

// Execute runs every member that is not applied yet, in order.
func (a *LabeledAction) Execute() error {
	var errs []error
	for _, c := range a.commands {
		if c.Executed() {
			continue
		}
		if err := c.Execute(); err != nil {
			errs = append(errs, err)
		}
	}
	return wrapAction(a, "execute", errs)
}

// Undo reverses the members, last one first. Members already reverted by
// an earlier, partly failed Undo are skipped, so the call can be retried.
func (a *LabeledAction) Undo() error {
	var errs []error
	for i := len(a.commands) - 1; i >= 0; i-- {
		if !a.commands[i].Executed() {
			continue
		}
		if err := a.commands[i].Undo(); err != nil {
			errs = append(errs, err)
		}
	}
	return wrapAction(a, "undo", errs)
}

// Redo reapplies the members in recording order, skipping the ones that
// are still applied.
func (a *LabeledAction) Redo() error {
	var errs []error
	for _, c := range a.commands {
		if c.Executed() {
			continue
		}
		if err := c.Redo(); err != nil {
			errs = append(errs, err)
		}
	}
	return wrapAction(a, "redo", errs)
}

func (a *LabeledAction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q (%d)", a.label, len(a.commands))
	for _, c := range a.commands {
		b.WriteString("\n  ")
		b.WriteString(strings.ReplaceAll(c.String(), "\n", "\n  "))
	}
	return b.String()
}

func wrapAction(a *LabeledAction, op string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s %q: %w", op, a.label, errors.Join(errs...))
}

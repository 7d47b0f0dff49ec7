package command

import (
	"fmt"

	"github.com/mapeditor/esdlcore/model"
)

// Move reorders a value inside a multi-valued feature.
type Move struct {
	base
	value any
	from  int
	to    int
	list  *model.List
}

// NewMove returns an unexecuted command moving value to index to.
func NewMove(owner *model.Object, feature *model.Feature, value any, to int) *Move {
	return &Move{
		base:  base{owner: owner, feature: feature},
		value: value,
		from:  -1,
		to:    to,
		list:  listOf(owner, feature),
	}
}

// MoveFromChange describes a move from index from to index to that already
// happened.
func MoveFromChange(owner *model.Object, feature *model.Feature, value any, from, to int) *Move {
	c := NewMove(owner, feature, value, to)
	c.from = from
	c.executed = true
	return c
}

func (c *Move) Kind() Kind { return KindMove }

// Value returns the moved value.
func (c *Move) Value() any { return c.value }

// From returns the index the value left, -1 before execution.
func (c *Move) From() int { return c.from }

// To returns the index the value is moved to.
func (c *Move) To() int { return c.to }

func (c *Move) CanExecute() bool {
	return !c.executed && c.list != nil && c.list.Contains(c.value) && c.to >= 0 && c.to < c.list.Len()
}

func (c *Move) CanUndo() bool {
	return c.executed && c.list != nil
}

func (c *Move) Execute() error {
	if !c.CanExecute() {
		return invalidState("execute", c)
	}
	from := c.list.Index(c.value)
	if err := c.list.Move(from, c.to); err != nil {
		return err
	}
	c.from = from
	c.executed = true
	return nil
}

func (c *Move) Undo() error {
	if !c.CanUndo() {
		return invalidState("undo", c)
	}
	if err := moveValue(c.list, c.value, c.from); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *Move) Redo() error {
	if c.executed || c.list == nil {
		return invalidState("redo", c)
	}
	if err := moveValue(c.list, c.value, c.to); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Move) Label() string {
	return c.labelOr("Move in " + featureName(c.feature))
}

func (c *Move) String() string {
	return fmt.Sprintf("move %v in %s.%s from %d to %d", c.value, c.owner, featureName(c.feature), c.from, c.to)
}

// moveValue puts value at index (clamped to the list). A value that is no
// longer in the list is not an error.
func moveValue(list *model.List, value any, index int) error {
	cur := list.Index(value)
	if cur < 0 {
		return nil
	}
	if index < 0 || index >= list.Len() {
		index = list.Len() - 1
	}
	return list.Move(cur, index)
}

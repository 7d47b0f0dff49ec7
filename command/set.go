package command

import (
	"fmt"

	"github.com/mapeditor/esdlcore/model"
)

// Set assigns a single-valued feature.
type Set struct {
	base
	value    any
	previous any
}

// NewSet returns an unexecuted command assigning value to owner's feature.
func NewSet(owner *model.Object, feature *model.Feature, value any) *Set {
	return &Set{base: base{owner: owner, feature: feature}, value: value}
}

// SetFromChange describes an assignment that already happened.
func SetFromChange(owner *model.Object, feature *model.Feature, previous, value any) *Set {
	c := NewSet(owner, feature, value)
	c.previous = previous
	c.executed = true
	return c
}

func (c *Set) Kind() Kind { return KindSet }

// Value returns the assigned value.
func (c *Set) Value() any { return c.value }

// Previous returns the value the feature held before the assignment.
func (c *Set) Previous() any { return c.previous }

func (c *Set) CanExecute() bool {
	return !c.executed && c.valid() && !c.feature.Many
}

func (c *Set) Execute() error {
	if !c.CanExecute() {
		return invalidState("execute", c)
	}
	c.previous = c.owner.GetFeature(c.feature)
	if err := c.owner.SetFeature(c.feature, c.value); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Set) Undo() error {
	if !c.CanUndo() {
		return invalidState("undo", c)
	}
	if err := c.owner.SetFeature(c.feature, c.previous); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *Set) Redo() error {
	if c.executed || !c.valid() {
		return invalidState("redo", c)
	}
	if err := c.owner.SetFeature(c.feature, c.value); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Set) Label() string {
	return c.labelOr("Set " + featureName(c.feature))
}

func (c *Set) String() string {
	return fmt.Sprintf("set %s.%s: %v -> %v", c.owner, featureName(c.feature), c.previous, c.value)
}

// Unset clears a feature and restores it on undo. It is the command
// recorded for deletions of a feature value.
type Unset struct {
	base
	previous any
}

// NewUnset returns an unexecuted command clearing owner's feature.
func NewUnset(owner *model.Object, feature *model.Feature) *Unset {
	return &Unset{base: base{owner: owner, feature: feature}}
}

// UnsetFromChange describes a clear that already happened.
func UnsetFromChange(owner *model.Object, feature *model.Feature, previous any) *Unset {
	c := NewUnset(owner, feature)
	c.previous = previous
	c.executed = true
	return c
}

func (c *Unset) Kind() Kind { return KindUnset }

// Value returns the value the feature held before it was cleared.
func (c *Unset) Value() any { return c.previous }

func (c *Unset) CanExecute() bool {
	return !c.executed && c.valid()
}

func (c *Unset) Execute() error {
	if !c.CanExecute() {
		return invalidState("execute", c)
	}
	if c.feature.Many {
		c.previous = c.owner.ListFeature(c.feature).Items()
	} else {
		c.previous = c.owner.GetFeature(c.feature)
	}
	if err := c.owner.UnsetFeature(c.feature); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Unset) Undo() error {
	if !c.CanUndo() {
		return invalidState("undo", c)
	}
	if c.feature.Many {
		items, _ := c.previous.([]any)
		list := c.owner.ListFeature(c.feature)
		for i, item := range items {
			idx := i
			if idx > list.Len() {
				idx = list.Len()
			}
			if err := list.Insert(idx, item); err != nil {
				return err
			}
		}
	} else if err := c.owner.SetFeature(c.feature, c.previous); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *Unset) Redo() error {
	if c.executed || !c.valid() {
		return invalidState("redo", c)
	}
	if err := c.owner.UnsetFeature(c.feature); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Unset) Label() string {
	return c.labelOr("Unset " + featureName(c.feature))
}

func (c *Unset) String() string {
	return fmt.Sprintf("unset %s.%s (was %v)", c.owner, featureName(c.feature), c.previous)
}

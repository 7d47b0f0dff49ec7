package command

import (
	"fmt"

	"github.com/mapeditor/esdlcore/model"
)

// Add inserts a value into a multi-valued feature.
type Add struct {
	base
	value any
	index int
	list  *model.List
}

// NewAdd returns an unexecuted command inserting value at index; a negative
// index appends.
func NewAdd(owner *model.Object, feature *model.Feature, value any, index int) *Add {
	return &Add{
		base:  base{owner: owner, feature: feature},
		value: value,
		index: index,
		list:  listOf(owner, feature),
	}
}

// AddFromChange describes an insertion that already happened at index.
func AddFromChange(owner *model.Object, feature *model.Feature, value any, index int) *Add {
	c := NewAdd(owner, feature, value, index)
	c.executed = true
	return c
}

func (c *Add) Kind() Kind { return KindAdd }

// Value returns the inserted value.
func (c *Add) Value() any { return c.value }

// Index returns the insertion index, -1 when unknown.
func (c *Add) Index() int { return c.index }

// List returns the live collection the command acts on.
func (c *Add) List() *model.List { return c.list }

func (c *Add) CanExecute() bool {
	return !c.executed && c.list != nil
}

func (c *Add) CanUndo() bool {
	return c.executed && c.list != nil
}

func (c *Add) Execute() error {
	if !c.CanExecute() {
		return invalidState("execute", c)
	}
	return c.insert()
}

func (c *Add) Undo() error {
	if !c.CanUndo() {
		return invalidState("undo", c)
	}
	if err := removeValue(c.list, c.value, c.index); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *Add) Redo() error {
	if c.executed || c.list == nil {
		return invalidState("redo", c)
	}
	return c.insert()
}

func (c *Add) insert() error {
	idx, err := insertValue(c.list, c.value, c.index)
	if err != nil {
		return err
	}
	c.index = idx
	c.executed = true
	return nil
}

func (c *Add) Label() string {
	return c.labelOr("Add to " + featureName(c.feature))
}

func (c *Add) String() string {
	return fmt.Sprintf("add %v to %s.%s at %d", c.value, c.owner, featureName(c.feature), c.index)
}

// Remove deletes a value from a multi-valued feature.
type Remove struct {
	base
	value any
	index int
	list  *model.List
}

// NewRemove returns an unexecuted command removing value.
func NewRemove(owner *model.Object, feature *model.Feature, value any) *Remove {
	return &Remove{
		base:  base{owner: owner, feature: feature},
		value: value,
		index: -1,
		list:  listOf(owner, feature),
	}
}

// RemoveFromChange describes a removal that already happened at index. A
// negative index means the position is unknown and undo appends.
func RemoveFromChange(owner *model.Object, feature *model.Feature, value any, index int) *Remove {
	c := NewRemove(owner, feature, value)
	c.index = index
	c.executed = true
	return c
}

func (c *Remove) Kind() Kind { return KindRemove }

// Value returns the removed value.
func (c *Remove) Value() any { return c.value }

// Index returns the position the value was removed from, -1 when unknown.
func (c *Remove) Index() int { return c.index }

// List returns the live collection the command acts on.
func (c *Remove) List() *model.List { return c.list }

func (c *Remove) CanExecute() bool {
	return !c.executed && c.list != nil && c.list.Contains(c.value)
}

func (c *Remove) CanUndo() bool {
	return c.executed && c.list != nil
}

func (c *Remove) Execute() error {
	if !c.CanExecute() {
		return invalidState("execute", c)
	}
	idx := c.list.Index(c.value)
	if _, err := c.list.RemoveAt(idx); err != nil {
		return err
	}
	c.index = idx
	c.executed = true
	return nil
}

func (c *Remove) Undo() error {
	if !c.CanUndo() {
		return invalidState("undo", c)
	}
	if _, err := insertValue(c.list, c.value, c.index); err != nil {
		return err
	}
	c.executed = false
	return nil
}

func (c *Remove) Redo() error {
	if c.executed || c.list == nil {
		return invalidState("redo", c)
	}
	if err := removeValue(c.list, c.value, c.index); err != nil {
		return err
	}
	c.executed = true
	return nil
}

func (c *Remove) Label() string {
	return c.labelOr("Remove from " + featureName(c.feature))
}

func (c *Remove) String() string {
	return fmt.Sprintf("remove %v from %s.%s at %d", c.value, c.owner, featureName(c.feature), c.index)
}

func listOf(owner *model.Object, feature *model.Feature) *model.List {
	if owner == nil || feature == nil || !feature.Many {
		return nil
	}
	return owner.ListFeature(feature)
}

// insertValue puts value back at index (clamped, negative appends). Unique
// lists that already hold the value, typically because the model mirrored
// an opposite, are left alone. It returns the index used.
func insertValue(list *model.List, value any, index int) (int, error) {
	if list.Feature().IsUnique() {
		if idx := list.Index(value); idx >= 0 {
			return idx, nil
		}
	}
	if index < 0 || index > list.Len() {
		index = list.Len()
	}
	if err := list.Insert(index, value); err != nil {
		return -1, err
	}
	return index, nil
}

// removeValue removes value, preferring the element at hint so duplicates
// in non-unique lists are resolved deterministically. A value that is
// already gone is not an error.
func removeValue(list *model.List, value any, hint int) error {
	idx := -1
	if hint >= 0 && hint < list.Len() && model.SameValue(list.At(hint), value) {
		idx = hint
	} else {
		idx = list.Index(value)
	}
	if idx < 0 {
		return nil
	}
	_, err := list.RemoveAt(idx)
	return err
}

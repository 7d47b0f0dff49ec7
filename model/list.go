package model

import (
	"fmt"
	"slices"
)

// List is the live, ordered collection behind a multi-valued feature.
// Mutations keep containment and opposites consistent and notify observers.
type List struct {
	owner   *Object
	feature *Feature
	items   []any
}

// Owner returns the object holding the list.
func (l *List) Owner() *Object {
	return l.owner
}

// Feature returns the feature the list belongs to.
func (l *List) Feature() *Feature {
	return l.feature
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the element at index i.
func (l *List) At(i int) any {
	return l.items[i]
}

// Index returns the index of the first element equal to v, or -1.
func (l *List) Index(v any) int {
	return l.index(normalize(v))
}

func (l *List) index(v any) int {
	for i, item := range l.items {
		if SameValue(item, v) {
			return i
		}
	}
	return -1
}

// Contains reports whether v is an element of l.
func (l *List) Contains(v any) bool {
	return l.Index(v) >= 0
}

// Items returns a snapshot of the elements.
func (l *List) Items() []any {
	return slices.Clone(l.items)
}

// Objects returns the elements that are objects.
func (l *List) Objects() []*Object {
	out := make([]*Object, 0, len(l.items))
	for _, item := range l.items {
		if obj, ok := item.(*Object); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Append adds v at the end of l.
func (l *List) Append(v any) error {
	return l.Insert(len(l.items), v)
}

// Insert adds v at index i. Inserting an element already present in a
// unique list is a no-op.
func (l *List) Insert(i int, v any) error {
	v = normalize(v)
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: %d not in [0, %d] for %s", ErrIndexOutOfRange, i, len(l.items), l.feature)
	}
	f := l.feature
	if f.Kind == Attribute {
		if f.Unique && l.index(v) >= 0 {
			return nil
		}
		l.items = slices.Insert(l.items, i, v)
		l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindAdd, New: v, Position: i})
		return nil
	}

	if v == nil {
		return fmt.Errorf("%w: %s does not accept nil", ErrTypeMismatch, f)
	}
	if err := checkType(f, v); err != nil {
		return err
	}
	obj := v.(*Object)
	if l.index(obj) >= 0 {
		return nil
	}

	if f.Containment {
		if obj == l.owner || obj.isAncestorOf(l.owner) {
			return fmt.Errorf("%w: %s into %s", ErrContainmentCycle, obj, l.owner)
		}
		obj.detach()
		if i > len(l.items) {
			i = len(l.items)
		}
		l.items = slices.Insert(l.items, i, v)
		obj.container, obj.containingFeature = l.owner, f
		l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindAdd, New: obj, Position: i})
		obj.notifyContainer(f, nil, l.owner)
		return nil
	}

	l.items = slices.Insert(l.items, i, v)
	obj.addInverse(l.owner, f)
	l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindAdd, New: obj, Position: i})
	if g := f.OppositeFeature(); g != nil {
		obj.takeOpposite(g, l.owner)
	}
	return nil
}

// Remove deletes the first occurrence of v.
func (l *List) Remove(v any) error {
	idx := l.Index(v)
	if idx < 0 {
		return fmt.Errorf("%w: %v in %s", ErrNotInList, v, l.feature)
	}
	_, err := l.RemoveAt(idx)
	return err
}

// RemoveAt deletes and returns the element at index i.
func (l *List) RemoveAt(i int) (any, error) {
	if i < 0 || i >= len(l.items) {
		return nil, fmt.Errorf("%w: %d not in [0, %d) for %s", ErrIndexOutOfRange, i, len(l.items), l.feature)
	}
	v := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	f := l.feature

	obj, isObj := v.(*Object)
	if f.Kind == Attribute || !isObj {
		l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindRemove, Old: v, Position: i})
		return v, nil
	}

	if f.Containment {
		obj.container, obj.containingFeature = nil, nil
		l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindRemove, Old: obj, Position: i})
		obj.notifyContainer(f, l.owner, nil)
		return v, nil
	}

	obj.removeInverse(l.owner, f)
	l.owner.notify(Notification{Notifier: l.owner, Feature: f, Kind: KindRemove, Old: obj, Position: i})
	if g := f.OppositeFeature(); g != nil {
		obj.dropOpposite(g, l.owner)
	}
	return v, nil
}

// Move relocates the element at index from to index to. Containment and
// opposites are unaffected.
func (l *List) Move(from, to int) error {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d not in [0, %d) for %s", ErrIndexOutOfRange, from, to, n, l.feature)
	}
	if from == to {
		return nil
	}
	v := l.items[from]
	l.items = slices.Delete(l.items, from, from+1)
	l.items = slices.Insert(l.items, to, v)
	l.owner.notify(Notification{Notifier: l.owner, Feature: l.feature, Kind: KindMove, Old: from, New: v, Position: to})
	return nil
}

func (l *List) String() string {
	return fmt.Sprintf("%v", l.items)
}

package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"github.com/mitchellh/copystructure"
)

var (
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrManyValued       = errors.New("feature is multi-valued")
	ErrTypeMismatch     = errors.New("value does not match feature type")
	ErrNotInList        = errors.New("value not in list")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrContainmentCycle = errors.New("object would contain itself")
)

// Object is an instance of a Class.
type Object struct {
	id    string
	class *Class

	// values holds single-valued features and the *List of multi-valued
	// ones. Container back-references are derived from container.
	values map[*Feature]any

	container         *Object
	containingFeature *Feature
	resource          *Resource

	// inverse lists the non-containment references pointing at this object.
	inverse []inverseRef
}

type inverseRef struct {
	owner   *Object
	feature *Feature
}

// New creates an empty instance of c. Attribute defaults are deep-copied so
// instances never share mutable default values.
func New(c *Class) *Object {
	o := &Object{
		id:     uuid.NewString(),
		class:  c,
		values: make(map[*Feature]any),
	}
	for _, f := range c.Features() {
		if f.Kind == Attribute && !f.Many && f.Default != nil {
			o.values[f] = copyDefault(f.Default)
		}
	}
	return o
}

func copyDefault(v any) any {
	if v == nil {
		return nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return cp
}

// ID returns the opaque identity of o.
func (o *Object) ID() string {
	return o.id
}

// Class returns the class o is an instance of.
func (o *Object) Class() *Class {
	return o.class
}

// Container returns the object owning o, if any.
func (o *Object) Container() *Object {
	return o.container
}

// ContainingFeature returns the containment feature of Container() holding o.
func (o *Object) ContainingFeature() *Feature {
	return o.containingFeature
}

// Resource returns the resource o belongs to through its root, or nil for
// detached objects.
func (o *Object) Resource() *Resource {
	return o.Root().resource
}

// Root returns the top-most container of o.
func (o *Object) Root() *Object {
	root := o
	for root.container != nil {
		root = root.container
	}
	return root
}

func (o *Object) owns(f *Feature) bool {
	return f != nil && f.owner != nil && o.class.IsA(f.owner)
}

func (o *Object) mustFeature(name string) *Feature {
	f := o.class.Feature(name)
	if f == nil {
		panic(fmt.Sprintf("model: %v: %s has no feature %q", ErrUnknownFeature, o.class.Name, name))
	}
	return f
}

// Get returns the value of the named feature. Multi-valued features return
// their *List. It panics if the class has no such feature.
func (o *Object) Get(name string) any {
	return o.GetFeature(o.mustFeature(name))
}

// GetFeature is Get by descriptor.
func (o *Object) GetFeature(f *Feature) any {
	if f.Many {
		return o.ListFeature(f)
	}
	if f.IsContainer() {
		if o.container != nil && o.containingFeature == f.OppositeFeature() {
			return o.container
		}
		return nil
	}
	return o.values[f]
}

// GetObject returns the named single-valued reference, or nil.
func (o *Object) GetObject(name string) *Object {
	obj, _ := o.Get(name).(*Object)
	return obj
}

// GetString returns the named attribute as a string, or "".
func (o *Object) GetString(name string) string {
	s, _ := o.Get(name).(string)
	return s
}

// List returns the collection handle of a multi-valued feature. It panics if
// the feature is unknown or single-valued.
func (o *Object) List(name string) *List {
	f := o.mustFeature(name)
	if !f.Many {
		panic(fmt.Sprintf("model: %s is single-valued", f))
	}
	return o.ListFeature(f)
}

// ListFeature is List by descriptor.
func (o *Object) ListFeature(f *Feature) *List {
	if l, ok := o.values[f].(*List); ok {
		return l
	}
	l := &List{owner: o, feature: f}
	o.values[f] = l
	return l
}

// Set assigns a single-valued feature.
func (o *Object) Set(name string, v any) error {
	f := o.class.Feature(name)
	if f == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownFeature, o.class.Name, name)
	}
	return o.SetFeature(f, v)
}

// SetFeature is Set by descriptor.
func (o *Object) SetFeature(f *Feature, v any) error {
	if !o.owns(f) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownFeature, f, o.class.Name)
	}
	if f.Many {
		return fmt.Errorf("%w: %s", ErrManyValued, f)
	}
	v = normalize(v)

	if f.Kind == Attribute {
		old := o.values[f]
		if v == nil {
			delete(o.values, f)
		} else {
			o.values[f] = v
		}
		o.notify(Notification{Notifier: o, Feature: f, Kind: KindSet, Old: old, New: v, Position: -1})
		return nil
	}

	if err := checkType(f, v); err != nil {
		return err
	}
	nv, _ := v.(*Object)
	switch {
	case f.IsContainer():
		return o.setContainer(f, nv)
	case f.Containment:
		return o.setContained(f, nv, KindSet)
	default:
		o.setCrossRef(f, nv, KindSet)
		return nil
	}
}

// Unset clears a feature. Attributes go back to their default, references
// to nil and lists are emptied element by element from the end.
func (o *Object) Unset(name string) error {
	f := o.class.Feature(name)
	if f == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownFeature, o.class.Name, name)
	}
	return o.UnsetFeature(f)
}

// UnsetFeature is Unset by descriptor.
func (o *Object) UnsetFeature(f *Feature) error {
	if !o.owns(f) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownFeature, f, o.class.Name)
	}
	if f.Many {
		l := o.ListFeature(f)
		for l.Len() > 0 {
			if _, err := l.RemoveAt(l.Len() - 1); err != nil {
				return err
			}
		}
		return nil
	}

	switch {
	case f.Kind == Attribute:
		old := o.values[f]
		def := copyDefault(f.Default)
		if def == nil {
			delete(o.values, f)
		} else {
			o.values[f] = def
		}
		o.notify(Notification{Notifier: o, Feature: f, Kind: KindUnset, Old: old, New: def, Position: -1})
	case f.IsContainer():
		if o.container != nil && o.containingFeature == f.OppositeFeature() {
			o.detach()
		}
	case f.Containment:
		return o.setContained(f, nil, KindUnset)
	default:
		o.setCrossRef(f, nil, KindUnset)
	}
	return nil
}

func (o *Object) setContainer(f *Feature, parent *Object) error {
	g := f.OppositeFeature()
	if parent == nil {
		if o.container != nil && o.containingFeature == g {
			o.detach()
		}
		return nil
	}
	if o.container == parent && o.containingFeature == g {
		return nil
	}
	if g.Many {
		return parent.ListFeature(g).Append(o)
	}
	return parent.setContained(g, o, KindSet)
}

func (o *Object) setContained(f *Feature, nv *Object, kind Kind) error {
	old, _ := o.values[f].(*Object)
	if old == nv {
		return nil
	}
	if nv != nil {
		if nv == o || nv.isAncestorOf(o) {
			return fmt.Errorf("%w: %s into %s", ErrContainmentCycle, nv, o)
		}
		nv.detach()
	}
	if old != nil {
		old.container, old.containingFeature = nil, nil
	}
	if nv != nil {
		o.values[f] = nv
		nv.container, nv.containingFeature = o, f
	} else {
		delete(o.values, f)
	}
	o.notify(Notification{Notifier: o, Feature: f, Kind: kind, Old: objValue(old), New: objValue(nv), Position: -1})
	if old != nil {
		old.notifyContainer(f, o, nil)
	}
	if nv != nil {
		nv.notifyContainer(f, nil, o)
	}
	return nil
}

func (o *Object) setCrossRef(f *Feature, nv *Object, kind Kind) {
	old, _ := o.values[f].(*Object)
	if old == nv {
		return
	}
	if nv != nil {
		o.values[f] = nv
		nv.addInverse(o, f)
	} else {
		delete(o.values, f)
	}
	if old != nil {
		old.removeInverse(o, f)
	}
	o.notify(Notification{Notifier: o, Feature: f, Kind: kind, Old: objValue(old), New: objValue(nv), Position: -1})

	if g := f.OppositeFeature(); g != nil {
		if old != nil {
			old.dropOpposite(g, o)
		}
		if nv != nil {
			nv.takeOpposite(g, o)
		}
	}
}

// takeOpposite records src in o's opposite feature g without mirroring back.
func (o *Object) takeOpposite(g *Feature, src *Object) {
	if g.Many {
		l := o.ListFeature(g)
		if l.index(src) >= 0 {
			return
		}
		l.items = append(l.items, src)
		src.addInverse(o, g)
		o.notify(Notification{Notifier: o, Feature: g, Kind: KindAdd, New: src, Position: len(l.items) - 1})
		return
	}
	prev, _ := o.values[g].(*Object)
	if prev == src {
		return
	}
	o.values[g] = src
	src.addInverse(o, g)
	if prev != nil {
		prev.removeInverse(o, g)
	}
	o.notify(Notification{Notifier: o, Feature: g, Kind: KindSet, Old: objValue(prev), New: src, Position: -1})
	if prev != nil {
		if f := g.OppositeFeature(); f != nil {
			prev.dropOpposite(f, o)
		}
	}
}

// dropOpposite removes src from o's opposite feature g without mirroring
// back.
func (o *Object) dropOpposite(g *Feature, src *Object) {
	if g.Many {
		l := o.ListFeature(g)
		idx := l.index(src)
		if idx < 0 {
			return
		}
		l.items = slices.Delete(l.items, idx, idx+1)
		src.removeInverse(o, g)
		o.notify(Notification{Notifier: o, Feature: g, Kind: KindRemove, Old: src, Position: idx})
		return
	}
	if cur, _ := o.values[g].(*Object); cur == src {
		delete(o.values, g)
		src.removeInverse(o, g)
		o.notify(Notification{Notifier: o, Feature: g, Kind: KindSet, Old: src, Position: -1})
	}
}

func (o *Object) notifyContainer(f *Feature, old, nv *Object) {
	g := f.OppositeFeature()
	if g == nil {
		return
	}
	o.notify(Notification{Notifier: o, Feature: g, Kind: KindSet, Old: objValue(old), New: objValue(nv), Position: -1})
}

// detach removes o from its container or resource.
func (o *Object) detach() {
	switch {
	case o.container != nil:
		parent, f := o.container, o.containingFeature
		if f.Many {
			l := parent.ListFeature(f)
			if idx := l.index(o); idx >= 0 {
				_, _ = l.RemoveAt(idx)
			}
			return
		}
		_ = parent.setContained(f, nil, KindSet)
	case o.resource != nil:
		o.resource.Remove(o)
	}
}

func (o *Object) isAncestorOf(other *Object) bool {
	for p := other.container; p != nil; p = p.container {
		if p == o {
			return true
		}
	}
	return false
}

func (o *Object) addInverse(owner *Object, f *Feature) {
	ref := inverseRef{owner: owner, feature: f}
	if !slices.Contains(o.inverse, ref) {
		o.inverse = append(o.inverse, ref)
	}
}

func (o *Object) removeInverse(owner *Object, f *Feature) {
	if idx := slices.Index(o.inverse, inverseRef{owner: owner, feature: f}); idx >= 0 {
		o.inverse = slices.Delete(o.inverse, idx, idx+1)
	}
}

// Referrers returns the objects holding a non-containment reference to o.
func (o *Object) Referrers() []*Object {
	var out []*Object
	for _, ref := range o.inverse {
		if !slices.Contains(out, ref.owner) {
			out = append(out, ref.owner)
		}
	}
	return out
}

// Contents returns the objects directly contained by o, in feature order.
func (o *Object) Contents() []*Object {
	var out []*Object
	for _, f := range o.class.Features() {
		if !f.Containment {
			continue
		}
		if f.Many {
			out = append(out, o.ListFeature(f).Objects()...)
		} else if child, ok := o.values[f].(*Object); ok {
			out = append(out, child)
		}
	}
	return out
}

// AllContents returns the containment subtree of o (excluding o) in
// depth-first pre-order.
func (o *Object) AllContents() []*Object {
	var out []*Object
	for _, child := range o.Contents() {
		out = append(out, child)
		out = append(out, child.AllContents()...)
	}
	return out
}

func (o *Object) notify(n Notification) {
	if r := o.Resource(); r != nil {
		r.publish(n)
	}
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	if f := o.class.Feature("name"); f != nil && f.Kind == Attribute {
		if name, ok := o.values[f].(string); ok && name != "" {
			return fmt.Sprintf("%s(%s)", o.class.Name, name)
		}
	}
	return fmt.Sprintf("%s(%s)", o.class.Name, o.id[:8])
}

// Delete removes obj from the model: every object of its containment
// subtree, then obj itself, loses all inbound references and is detached
// from its container. Each step goes through the regular mutation path, so
// observers see (and may record) every change.
func Delete(obj *Object) {
	for _, child := range obj.AllContents() {
		child.sever()
	}
	obj.sever()
}

func (o *Object) sever() {
	for _, ref := range slices.Clone(o.inverse) {
		ref.owner.removeReference(ref.feature, o)
	}
	o.detach()
}

func (o *Object) removeReference(f *Feature, target *Object) {
	if f.Many {
		l := o.ListFeature(f)
		if idx := l.index(target); idx >= 0 {
			_, _ = l.RemoveAt(idx)
		}
		return
	}
	if cur, _ := o.values[f].(*Object); cur == target {
		o.setCrossRef(f, nil, KindSet)
	}
}

func normalize(v any) any {
	if obj, ok := v.(*Object); ok && obj == nil {
		return nil
	}
	return v
}

func objValue(o *Object) any {
	if o == nil {
		return nil
	}
	return o
}

func checkType(f *Feature, v any) error {
	if v == nil {
		return nil
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("%w: %s expects an object, got %T", ErrTypeMismatch, f, v)
	}
	if f.Type != nil && !obj.class.IsA(f.Type) {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeMismatch, f, f.Type, obj.class)
	}
	return nil
}

// SameValue reports whether two feature values are the same element:
// objects by identity, everything else by equality.
func SameValue(a, b any) bool {
	if ao, ok := a.(*Object); ok {
		bo, ok := b.(*Object)
		return ok && ao == bo
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

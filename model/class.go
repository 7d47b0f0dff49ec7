// Package model is a small reflective object model in the spirit of ECore.
//
// Classes describe their features (attributes and references) through a
// table of descriptors. Objects hold values for those features, keep
// containment and opposite references consistent on every mutation, and
// publish a Notification for each change to the observers subscribed on
// their resource.
package model

import (
	"fmt"
)

// FeatureKind tells attributes and references apart.
type FeatureKind int

const (
	// Attribute is a plain value feature.
	Attribute FeatureKind = iota
	// Reference points at other objects.
	Reference
)

func (k FeatureKind) String() string {
	switch k {
	case Attribute:
		return "attribute"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("FeatureKind(%d)", int(k))
	}
}

// Feature describes one structural feature of a class.
type Feature struct {
	Name string
	Kind FeatureKind

	// Many marks ordered, multi-valued features.
	Many bool

	// Containment marks references that own their targets.
	Containment bool

	// Opposite names the feature on Type that mirrors this reference.
	Opposite string

	// Unique forbids duplicate values in a multi-valued attribute.
	// Multi-valued references are always unique.
	Unique bool

	// Default is the initial value of single-valued attributes. It is
	// copied into every new instance.
	Default any

	// Type is the target class of a reference. Attributes leave it nil.
	Type *Class

	owner *Class
}

// Owner returns the class declaring f.
func (f *Feature) Owner() *Class {
	return f.owner
}

// IsReference reports whether f is a reference.
func (f *Feature) IsReference() bool {
	return f.Kind == Reference
}

// IsUnique reports whether a multi-valued f rejects duplicates.
func (f *Feature) IsUnique() bool {
	return f.Kind == Reference || f.Unique
}

// OppositeFeature resolves the opposite descriptor on the target class, or
// nil when f has none.
func (f *Feature) OppositeFeature() *Feature {
	if f.Opposite == "" || f.Type == nil {
		return nil
	}
	return f.Type.Feature(f.Opposite)
}

// IsContainer reports whether f is the automatic back-reference of a
// containment (its opposite is a containment reference).
func (f *Feature) IsContainer() bool {
	if f.Kind != Reference {
		return false
	}
	opp := f.OppositeFeature()
	return opp != nil && opp.Containment
}

func (f *Feature) String() string {
	if f.owner == nil {
		return f.Name
	}
	return f.owner.Name + "." + f.Name
}

// Class is the reflective description of a model type.
type Class struct {
	Name     string
	Abstract bool

	supers   []*Class
	features []*Feature
}

// NewClass returns a class inheriting the features of supers.
func NewClass(name string, supers ...*Class) *Class {
	return &Class{Name: name, supers: supers}
}

// Supers returns the direct super classes of c.
func (c *Class) Supers() []*Class {
	out := make([]*Class, len(c.supers))
	copy(out, c.supers)
	return out
}

// AddFeature declares f on c. It panics if c (or one of its supers) already
// declares a feature with the same name.
func (c *Class) AddFeature(f *Feature) *Feature {
	if c.Feature(f.Name) != nil {
		panic(fmt.Sprintf("model: feature %s already declared on %s", f.Name, c.Name))
	}
	f.owner = c
	c.features = append(c.features, f)
	return f
}

// AddAttribute declares a plain value feature.
func (c *Class) AddAttribute(name string, many bool, def any) *Feature {
	return c.AddFeature(&Feature{Name: name, Kind: Attribute, Many: many, Default: def})
}

// AddReference declares a reference to instances of target.
func (c *Class) AddReference(name string, target *Class, many, containment bool) *Feature {
	return c.AddFeature(&Feature{
		Name:        name,
		Kind:        Reference,
		Many:        many,
		Containment: containment,
		Type:        target,
	})
}

// SetOpposites pairs two references so that each mirrors the other.
func SetOpposites(a, b *Feature) {
	if a.Kind != Reference || b.Kind != Reference {
		panic("model: opposites must both be references")
	}
	if a.Containment && b.Containment {
		panic("model: a containment cannot be the opposite of a containment")
	}
	a.Opposite = b.Name
	b.Opposite = a.Name
}

// Features returns every feature of c, inherited ones first.
func (c *Class) Features() []*Feature {
	var out []*Feature
	seen := make(map[*Class]bool)
	c.collect(&out, seen)
	return out
}

func (c *Class) collect(out *[]*Feature, seen map[*Class]bool) {
	if seen[c] {
		return
	}
	seen[c] = true
	for _, s := range c.supers {
		s.collect(out, seen)
	}
	*out = append(*out, c.features...)
}

// Feature looks a feature up by name, searching super classes too.
func (c *Class) Feature(name string) *Feature {
	for _, f := range c.features {
		if f.Name == name {
			return f
		}
	}
	for _, s := range c.supers {
		if f := s.Feature(name); f != nil {
			return f
		}
	}
	return nil
}

// IsA reports whether c is other or inherits from it.
func (c *Class) IsA(other *Class) bool {
	if c == other {
		return true
	}
	for _, s := range c.supers {
		if s.IsA(other) {
			return true
		}
	}
	return false
}

// New is shorthand for model.New(c).
func (c *Class) New() *Object {
	return New(c)
}

func (c *Class) String() string {
	return c.Name
}

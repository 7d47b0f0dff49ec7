package model

import (
	"slices"
)

// Resource owns a set of root objects and is the unit change observers
// subscribe to.
type Resource struct {
	uri       string
	contents  []*Object
	observers []Observer
}

// NewResource returns an empty resource identified by uri.
func NewResource(uri string) *Resource {
	return &Resource{uri: uri}
}

// URI returns the identifier the resource was created with.
func (r *Resource) URI() string {
	return r.uri
}

// Contents returns the root objects of r.
func (r *Resource) Contents() []*Object {
	return slices.Clone(r.contents)
}

// Append makes obj a root of r, detaching it from any previous owner.
func (r *Resource) Append(obj *Object) {
	if obj.resource == r {
		return
	}
	obj.detach()
	obj.resource = r
	r.contents = append(r.contents, obj)
}

// Remove detaches a root object from r. It returns false if obj is not one
// of r's roots.
func (r *Resource) Remove(obj *Object) bool {
	idx := slices.Index(r.contents, obj)
	if idx < 0 {
		return false
	}
	r.contents = slices.Delete(r.contents, idx, idx+1)
	obj.resource = nil
	return true
}

// AllContents returns every object of r in depth-first pre-order.
func (r *Resource) AllContents() []*Object {
	var out []*Object
	for _, root := range r.contents {
		out = append(out, root)
		out = append(out, root.AllContents()...)
	}
	return out
}

// Find returns the object of r with the given identity.
func (r *Resource) Find(id string) (*Object, bool) {
	for _, obj := range r.AllContents() {
		if obj.id == id {
			return obj, true
		}
	}
	return nil, false
}

// Subscribe registers o for every notification raised by objects of r.
func (r *Resource) Subscribe(o Observer) {
	if slices.Contains(r.observers, o) {
		return
	}
	r.observers = append(r.observers, o)
}

// Unsubscribe removes o. It reports whether o was subscribed.
func (r *Resource) Unsubscribe(o Observer) bool {
	idx := slices.Index(r.observers, o)
	if idx < 0 {
		return false
	}
	r.observers = slices.Delete(r.observers, idx, idx+1)
	return true
}

// Observers returns the number of subscribed observers.
func (r *Resource) Observers() int {
	return len(r.observers)
}

func (r *Resource) publish(n Notification) {
	// Observers may unsubscribe while being notified.
	for _, o := range slices.Clone(r.observers) {
		o.Notify(n)
	}
}

package model

import "fmt"

// Kind is the kind of change a Notification describes.
type Kind int

const (
	KindSet Kind = iota + 1
	KindUnset
	KindAdd
	KindRemove
	KindMove
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "SET"
	case KindUnset:
		return "UNSET"
	case KindAdd:
		return "ADD"
	case KindRemove:
		return "REMOVE"
	case KindMove:
		return "MOVE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Notification describes one feature mutation. It is produced synchronously
// while the mutation happens, after the new state is in place.
type Notification struct {
	Notifier *Object
	Feature  *Feature
	Kind     Kind
	Old      any
	New      any

	// Position is the list index affected by an Add or Remove, the
	// destination of a Move, or -1. A Move carries its source index in Old.
	Position int
}

func (n Notification) String() string {
	return fmt.Sprintf("%s %s on %s: %v -> %v", n.Kind, n.Feature, n.Notifier, n.Old, n.New)
}

// Observer receives the notifications of a resource. Observers are compared
// by identity when unsubscribing, so implementations should be pointers.
type Observer interface {
	Notify(n Notification)
}

// Package tracker records the changes of a model resource into an undo
// stack.
//
// A Registry owns one Tracker per resource. The tracker observes the
// resource's notifications and turns every change into an already executed
// command for its stack, which keeps it only while recording.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mapeditor/esdlcore/command"
	"github.com/mapeditor/esdlcore/model"
	"github.com/mapeditor/esdlcore/undo"
)

var (
	ErrNoResource     = errors.New("object is not attached to a resource")
	ErrNotTracked     = errors.New("resource is not tracked")
	ErrAlreadyTracked = errors.New("resource is already tracked")
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to trackers and their stacks.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStackOptions applies opts to every stack the registry creates.
func WithStackOptions(opts ...undo.Option) Option {
	return func(r *Registry) {
		r.stackOpts = append(r.stackOpts, opts...)
	}
}

// WithErrorHandler receives every change that could not be recorded. Model
// mutations report to observers without a return path, so this is the only
// way such failures reach the caller; they are logged either way.
func WithErrorHandler(h func(n model.Notification, err error)) Option {
	return func(r *Registry) {
		r.onError = h
	}
}

// Registry maps resources to their trackers. It is safe for concurrent use;
// the trackers themselves are not.
type Registry struct {
	mu        sync.Mutex
	trackers  map[*model.Resource]*Tracker
	logger    *slog.Logger
	stackOpts []undo.Option
	onError   func(model.Notification, error)
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		trackers: make(map[*model.Resource]*Tracker),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tracker binds an undo stack to the resource it records.
type Tracker struct {
	resource *model.Resource
	stack    *undo.Stack
	observer *observer
}

// Resource returns the tracked resource.
func (t *Tracker) Resource() *model.Resource { return t.resource }

// Stack returns the history of the tracked resource.
func (t *Tracker) Stack() *undo.Stack { return t.stack }

// NewTracker starts tracking the resource root belongs to with a fresh,
// idle stack.
func (r *Registry) NewTracker(root *model.Object) (*Tracker, error) {
	if root == nil {
		return nil, ErrNoResource
	}
	res := root.Resource()
	if res == nil {
		return nil, fmt.Errorf("new tracker for %s: %w", root, ErrNoResource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackers[res]; ok {
		return nil, fmt.Errorf("new tracker for %s: %w", res.URI(), ErrAlreadyTracked)
	}

	opts := append([]undo.Option{undo.WithLogger(r.logger)}, r.stackOpts...)
	stack := undo.New(opts...)
	t := &Tracker{
		resource: res,
		stack:    stack,
		observer: &observer{
			stack:   stack,
			logger:  r.logger.With("resource", res.URI()),
			onError: r.onError,
		},
	}
	res.Subscribe(t.observer)
	r.trackers[res] = t
	return t, nil
}

// GetTrackerStack returns the stack tracking the resource obj belongs to.
func (r *Registry) GetTrackerStack(obj *model.Object) (*undo.Stack, error) {
	if obj == nil {
		return nil, ErrNoResource
	}
	res := obj.Resource()
	if res == nil {
		return nil, fmt.Errorf("stack of %s: %w", obj, ErrNoResource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[res]
	if !ok {
		return nil, fmt.Errorf("stack of %s: %w", res.URI(), ErrNotTracked)
	}
	return t.stack, nil
}

// Delete stops the tracker owning stack and forgets it. The stack keeps its
// history but receives no further commands from the resource.
func (r *Registry) Delete(stack *undo.Stack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for res, t := range r.trackers {
		if t.stack != stack {
			continue
		}
		res.Unsubscribe(t.observer)
		delete(r.trackers, res)
		return nil
	}
	return ErrNotTracked
}

// Len returns the number of tracked resources.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

type observer struct {
	stack   *undo.Stack
	logger  *slog.Logger
	onError func(model.Notification, error)
}

// Notify hands every change to the stack, which keeps or discards it
// depending on its state. Changes caused by the stack's own replay are
// skipped.
func (o *observer) Notify(n model.Notification) {
	if n.Notifier == nil || n.Notifier.Resource() == nil || o.stack.IsReplaying() {
		return
	}
	c := o.translate(n)
	if c == nil {
		return
	}
	if err := o.stack.Append(c); err != nil {
		o.logger.Error("recording change failed",
			"kind", n.Kind, "owner", n.Notifier, "feature", n.Feature, "err", err)
		if o.onError != nil {
			o.onError(n, err)
		}
	}
}

// translate turns a notification into an executed command, or nil when the
// change is not worth recording.
func (o *observer) translate(n model.Notification) command.Command {
	if n.Old == nil && n.New == nil {
		return nil
	}
	f := n.Feature
	switch n.Kind {
	case model.KindSet:
		// Container back-references follow the containment they mirror.
		if f.IsContainer() {
			return nil
		}
		return command.SetFromChange(n.Notifier, f, n.Old, n.New)
	case model.KindUnset:
		if n.Old == nil || f.IsContainer() {
			return nil
		}
		return command.UnsetFromChange(n.Notifier, f, n.Old)
	case model.KindAdd:
		idx := n.Position
		if idx < 0 {
			idx = n.Notifier.ListFeature(f).Index(n.New)
		}
		return command.AddFromChange(n.Notifier, f, n.New, idx)
	case model.KindRemove:
		if n.Old == nil {
			return nil
		}
		// Without a position the value is put back at the end on undo.
		return command.RemoveFromChange(n.Notifier, f, n.Old, n.Position)
	case model.KindMove:
		from, ok := n.Old.(int)
		if !ok {
			return nil
		}
		return command.MoveFromChange(n.Notifier, f, n.New, from, n.Position)
	default:
		o.logger.Warn("unhandled notification", "kind", n.Kind, "feature", n.Feature)
		return nil
	}
}

package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mapeditor/esdlcore"
	"github.com/mapeditor/esdlcore/esdl"
	"github.com/mapeditor/esdlcore/model"
	"github.com/mapeditor/esdlcore/tracker"
	"github.com/mapeditor/esdlcore/undo"
)

var (
	ErrUnknownOp     = errors.New("unknown operation")
	ErrNotFound      = errors.New("object not found")
	ErrUnknownClass  = errors.New("unknown class")
	ErrUnknownFeat   = errors.New("unknown feature")
	ErrCannotPaste   = errors.New("copy has nowhere to go")
	ErrNotMultiValue = errors.New("feature is not multi-valued")
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry tracks the session's resource in reg instead of a private
// registry.
func WithRegistry(reg *tracker.Registry) Option {
	return func(s *Session) {
		s.registry = reg
	}
}

// WithCombine sets whether start opens a transaction when the step does not
// say.
func WithCombine(combine bool) Option {
	return func(s *Session) {
		s.combine = combine
	}
}

// WithCopyOptions applies opts to every copy step.
func WithCopyOptions(opts ...esdlcore.CopyOption) Option {
	return func(s *Session) {
		s.copyOpts = append(s.copyOpts, opts...)
	}
}

// Session is an energy system under edit together with its history.
type Session struct {
	script   *Script
	res      *model.Resource
	es       *model.Object
	registry *tracker.Registry
	stack    *undo.Stack

	logger   *slog.Logger
	combine  bool
	copyOpts []esdlcore.CopyOption
}

// New builds the energy system described by script and starts tracking it.
// The history starts empty and idle.
func New(script *Script, opts ...Option) (*Session, error) {
	s := &Session{
		script:  script,
		logger:  slog.Default(),
		combine: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = tracker.NewRegistry(tracker.WithLogger(s.logger))
	}

	name := script.Name
	if name == "" {
		name = "untitled"
	}
	s.res, s.es = esdl.NewEnergySystem(name, "memory://"+name+".esdl")
	if err := s.build(); err != nil {
		return nil, err
	}

	t, err := s.registry.NewTracker(s.es)
	if err != nil {
		return nil, err
	}
	s.stack = t.Stack()
	return s, nil
}

func (s *Session) build() error {
	area := esdl.TopArea(s.es)
	for _, a := range s.script.Assets {
		c, err := class(a.Class)
		if err != nil {
			return err
		}
		if _, err := esdl.AddAsset(area, c, a.Name); err != nil {
			return fmt.Errorf("add asset %s: %w", a.Name, err)
		}
	}
	for _, conn := range s.script.Connections {
		out, err := s.Find(conn.From)
		if err != nil {
			return err
		}
		in, err := s.Find(conn.To)
		if err != nil {
			return err
		}
		if err := esdl.Connect(out, in); err != nil {
			return err
		}
	}
	return nil
}

// Resource returns the edited resource.
func (s *Session) Resource() *model.Resource { return s.res }

// Stack returns the undo history.
func (s *Session) Stack() *undo.Stack { return s.stack }

// Find returns the object named name.
func (s *Session) Find(name string) (*model.Object, error) {
	obj, ok := esdl.FindByName(s.res, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return obj, nil
}

// Close stops tracking the resource.
func (s *Session) Close() error {
	return s.registry.Delete(s.stack)
}

// Run applies every step of the script in order and stops at the first
// failure.
func (s *Session) Run() error {
	for i, step := range s.script.Steps {
		if err := s.Apply(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

// Apply performs one step.
func (s *Session) Apply(step Step) error {
	s.logger.Debug("apply step", "op", step.Op, "target", step.Target, "feature", step.Feature)

	switch step.Op {
	case OpStart:
		combine := s.combine
		if step.Combine != nil {
			combine = *step.Combine
		}
		s.stack.StartRecording(combine, step.Label)
		return nil
	case OpStep:
		s.stack.AddUndoStep(step.Label)
		return nil
	case OpStop:
		s.stack.StopRecording()
		return nil
	case OpUndo:
		return s.stack.Undo()
	case OpRedo:
		return s.stack.Redo()
	}

	obj, err := s.Find(step.Target)
	if err != nil {
		return err
	}

	switch step.Op {
	case OpSet, OpUnset, OpAdd, OpRemove:
		return s.edit(obj, step)
	case OpDelete:
		model.Delete(obj)
		return nil
	case OpConnect:
		name, _ := step.Value.(string)
		in, err := s.Find(name)
		if err != nil {
			return err
		}
		return esdl.Connect(obj, in)
	case OpCopy:
		return s.paste(obj, step.Name)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
}

func (s *Session) edit(obj *model.Object, step Step) error {
	f := obj.Class().Feature(step.Feature)
	if f == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownFeat, obj.Class().Name, step.Feature)
	}

	switch step.Op {
	case OpSet:
		v, err := s.value(f, step.Value)
		if err != nil {
			return err
		}
		return obj.SetFeature(f, v)
	case OpUnset:
		return obj.UnsetFeature(f)
	}

	if !f.Many {
		return fmt.Errorf("%w: %s", ErrNotMultiValue, f)
	}
	list := obj.ListFeature(f)
	if step.Op == OpRemove {
		v, err := s.value(f, step.Value)
		if err != nil {
			return err
		}
		return list.Remove(v)
	}

	if f.Containment {
		c, err := class(step.Class)
		if err != nil {
			return err
		}
		return list.Append(esdl.New(c, step.Name))
	}
	v, err := s.value(f, step.Value)
	if err != nil {
		return err
	}
	return list.Append(v)
}

// value converts a scripted value for f: names for references, numbers
// widened to the attribute's float type.
func (s *Session) value(f *model.Feature, v any) (any, error) {
	if f.IsReference() {
		if v == nil {
			return nil, nil
		}
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s expects an object name, got %T", f, v)
		}
		return s.Find(name)
	}
	if i, ok := v.(int); ok {
		if _, isFloat := f.Default.(float64); isFloat {
			return float64(i), nil
		}
	}
	return v, nil
}

// paste appends a deep copy of obj next to it.
func (s *Session) paste(obj *model.Object, name string) error {
	parent, f := obj.Container(), obj.ContainingFeature()
	if parent == nil || !f.Many {
		return fmt.Errorf("%w: %s", ErrCannotPaste, obj)
	}
	opts := append([]esdlcore.CopyOption{esdlcore.WithLogger(s.logger)}, s.copyOpts...)
	cp := esdlcore.DeepCopy(obj, opts...)
	if name != "" {
		if err := cp.Set("name", name); err != nil {
			return err
		}
	}
	return parent.ListFeature(f).Append(cp)
}

// Entry is one line of the history.
type Entry struct {
	Label string
	Kind  string
	Done  bool
}

// History lists the stack entries, oldest first.
func (s *Session) History() []Entry {
	entries, labels := s.stack.Entries(), s.stack.Labels()
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Label: labels[i], Kind: e.Kind().String(), Done: i < s.stack.Index()}
	}
	return out
}

func class(name string) (*model.Class, error) {
	c, ok := esdl.ClassByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return c, nil
}

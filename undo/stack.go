// Package undo implements the linear undo/redo history of a model.
package undo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mapeditor/esdlcore/command"
	"github.com/mapeditor/esdlcore/model"
)

var (
	// ErrCannotExecute is returned when a command offered to the stack could
	// not later be undone.
	ErrCannotExecute = errors.New("command cannot be executed")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Recorder receives stack activity. internal/metrics.History implements it.
type Recorder interface {
	CommandRecorded(kind string)
	EchoDropped()
	CommandDiscarded()
	Replayed(direction string)
	ReplayRefused(direction string)
	ReplayFailed(direction string)
}

type nopRecorder struct{}

func (nopRecorder) CommandRecorded(string) {}
func (nopRecorder) EchoDropped()           {}
func (nopRecorder) CommandDiscarded()      {}
func (nopRecorder) Replayed(string)        {}
func (nopRecorder) ReplayRefused(string)   {}
func (nopRecorder) ReplayFailed(string)    {}

// Option configures a Stack.
type Option func(*Stack)

// WithLogger sets the logger used for refused replays.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics reports stack activity to r.
func WithMetrics(r Recorder) Option {
	return func(s *Stack) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLimit keeps at most n entries, dropping the oldest. Zero means
// unlimited.
func WithLimit(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.limit = n
		}
	}
}

// Stack is an ordered history of commands with a cursor separating done
// entries from undone ones.
//
// While recording, appended commands become entries (or members of the open
// transaction when combining). Outside of recording they are discarded.
// Undo and redo replay entries with recording suspended, so the changes they
// cause are not recorded again.
type Stack struct {
	entries []command.Command
	index   int

	recording bool
	combine   bool
	replaying bool
	action    *command.LabeledAction

	limit    int
	logger   *slog.Logger
	recorder Recorder
}

// New returns an idle, empty stack.
func New(opts ...Option) *Stack {
	s := &Stack{
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRecording begins accepting commands. With combine, commands are
// merged into one transaction labeled label until the next AddUndoStep or
// StopRecording.
func (s *Stack) StartRecording(combine bool, label string) {
	s.closeAction()
	s.recording = true
	s.combine = combine
	if combine {
		s.action = command.NewLabeledAction(label)
	}
}

// AddUndoStep closes the open transaction and opens a new one labeled
// label, without leaving the recording state.
func (s *Stack) AddUndoStep(label string) {
	s.StopRecording()
	s.StartRecording(true, label)
}

// StopRecording closes the open transaction, if any, and stops accepting
// commands.
func (s *Stack) StopRecording() {
	s.closeAction()
	s.recording = false
	s.combine = false
}

func (s *Stack) closeAction() {
	if s.action == nil {
		return
	}
	a := s.action
	s.action = nil
	if a.Len() > 0 {
		s.push(a)
	}
}

// IsRecording reports whether appended commands are currently kept.
func (s *Stack) IsRecording() bool {
	return s.recording && !s.replaying
}

// IsReplaying reports whether the stack itself is applying commands, during
// Undo, Redo or the execution of an appended command.
func (s *Stack) IsReplaying() bool {
	return s.replaying
}

// IsCombining reports whether a transaction is open.
func (s *Stack) IsCombining() bool {
	return s.recording && s.combine
}

// Append offers commands to the stack. Commands that are not executed yet
// are executed first. See Stack for when commands are kept.
func (s *Stack) Append(cmds ...command.Command) error {
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if !s.IsRecording() {
			s.recorder.CommandDiscarded()
			continue
		}
		if s.isEcho(c) {
			s.logger.Debug("dropped opposite echo", "command", c)
			s.recorder.EchoDropped()
			continue
		}
		if err := s.apply(c); err != nil {
			return err
		}
		if s.combine {
			s.action.Append(c)
		} else {
			s.push(c)
		}
		s.logger.Debug("recorded", "command", c, "combine", s.combine)
		s.recorder.CommandRecorded(c.Kind().String())
	}
	return nil
}

// apply makes sure c is in effect and can be reverted.
func (s *Stack) apply(c command.Command) error {
	if c.Executed() {
		if !c.CanUndo() {
			return fmt.Errorf("%w: %s cannot be undone", ErrCannotExecute, c)
		}
		return nil
	}
	if !c.CanExecute() {
		return fmt.Errorf("%w: %s", ErrCannotExecute, c)
	}

	// Executing raises notifications; do not record them a second time.
	s.replaying = true
	defer func() { s.replaying = false }()
	if err := c.Execute(); err != nil {
		return fmt.Errorf("execute %s: %w", c, err)
	}
	return nil
}

// isEcho reports whether c is the mirrored half of the last recorded
// command: the model keeps opposite references in sync, so a single user
// edit of a bidirectional link raises one notification per side. Recording
// both would make undo reverse the link twice.
func (s *Stack) isEcho(c command.Command) bool {
	var last command.Command
	if s.combine {
		last = s.action.Last()
	} else if s.index > 0 {
		last = s.entries[s.index-1]
	}

	prev, ok := last.(command.FeatureCommand)
	if !ok {
		return false
	}
	cur, ok := c.(command.FeatureCommand)
	if !ok || prev.Kind() != cur.Kind() {
		return false
	}
	pf, cf := prev.Feature(), cur.Feature()
	if pf == nil || cf == nil || pf.Opposite != cf.Name || cf.Opposite != pf.Name {
		return false
	}
	return sameObject(prev.Value(), cur.Owner()) && sameObject(cur.Value(), prev.Owner())
}

func sameObject(v any, obj *model.Object) bool {
	o, ok := v.(*model.Object)
	return ok && o == obj
}

func (s *Stack) push(c command.Command) {
	// A new entry discards the redo tail.
	s.entries = append(s.entries[:s.index], c)
	s.index++
	if s.limit > 0 && len(s.entries) > s.limit {
		drop := len(s.entries) - s.limit
		s.entries = append([]command.Command(nil), s.entries[drop:]...)
		s.index -= drop
	}
}

// Undo reverts the entry before the cursor. It refuses, logging a warning
// and returning nil, while a transaction is open.
func (s *Stack) Undo() error {
	if s.IsCombining() {
		s.logger.Warn("undo refused: a transaction is still open", "label", s.action.Label())
		s.recorder.ReplayRefused("undo")
		return nil
	}
	if !s.CanUndo() {
		return ErrNothingToUndo
	}
	entry := s.entries[s.index-1]
	if err := s.replay(entry.Undo); err != nil {
		s.recorder.ReplayFailed("undo")
		return fmt.Errorf("undo %q: %w", entry.Label(), err)
	}
	s.index--
	s.recorder.Replayed("undo")
	return nil
}

// Redo reapplies the entry at the cursor. It refuses, logging a warning and
// returning nil, while a transaction is open.
func (s *Stack) Redo() error {
	if s.IsCombining() {
		s.logger.Warn("redo refused: a transaction is still open", "label", s.action.Label())
		s.recorder.ReplayRefused("redo")
		return nil
	}
	if !s.CanRedo() {
		return ErrNothingToRedo
	}
	entry := s.entries[s.index]
	if err := s.replay(entry.Redo); err != nil {
		s.recorder.ReplayFailed("redo")
		return fmt.Errorf("redo %q: %w", entry.Label(), err)
	}
	s.index++
	s.recorder.Replayed("redo")
	return nil
}

func (s *Stack) replay(fn func() error) error {
	recording := s.recording
	s.recording = false
	s.replaying = true
	defer func() {
		s.recording = recording
		s.replaying = false
	}()
	return fn()
}

// CanUndo reports whether there are done entries.
func (s *Stack) CanUndo() bool {
	return s.index > 0
}

// CanRedo reports whether there are undone entries.
func (s *Stack) CanRedo() bool {
	return s.index < len(s.entries)
}

// Len returns the number of entries, done and undone.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Index returns the cursor: the number of done entries.
func (s *Stack) Index() int {
	return s.index
}

// Entries returns the history. Single-command transactions are unwrapped.
func (s *Stack) Entries() []command.Command {
	out := make([]command.Command, len(s.entries))
	for i, e := range s.entries {
		out[i] = unwrap(e)
	}
	return out
}

// Labels returns the label of every entry, oldest first. Transactions
// report their own label even when Entries unwraps them.
func (s *Stack) Labels() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Label()
	}
	return out
}

// UndoLabel returns the label of the entry Undo would revert.
func (s *Stack) UndoLabel() string {
	if !s.CanUndo() {
		return ""
	}
	return s.entries[s.index-1].Label()
}

// RedoLabel returns the label of the entry Redo would reapply.
func (s *Stack) RedoLabel() string {
	if !s.CanRedo() {
		return ""
	}
	return s.entries[s.index].Label()
}

// Clear drops the whole history and any open transaction. The recording
// state is kept.
func (s *Stack) Clear() {
	s.entries = nil
	s.index = 0
	if s.action != nil {
		s.action = command.NewLabeledAction(s.action.Label())
	}
}

func unwrap(c command.Command) command.Command {
	if a, ok := c.(*command.LabeledAction); ok {
		return a.Unwrap()
	}
	return c
}

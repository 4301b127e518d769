package forum

import (
	"sync"

	"parley/internal/models"
)

// Mode is the UI-local interaction state of a single comment. Editing and
// replying are mutually exclusive; entering one cancels the other.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
	ModeReplying
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeReplying:
		return "replying"
	default:
		return "viewing"
	}
}

// Modes tracks the interaction mode per comment plus an in-flight flag that
// refuses a second submission of the same comment while one is pending (the
// double-click guard).
type Modes struct {
	mu       sync.Mutex
	modes    map[uint]Mode
	inFlight map[uint]bool
}

// NewModes returns an empty mode tracker; every comment starts out viewing.
func NewModes() *Modes {
	return &Modes{
		modes:    make(map[uint]Mode),
		inFlight: make(map[uint]bool),
	}
}

// Mode returns the current mode for a comment.
func (m *Modes) Mode(commentID uint) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modes[commentID]
}

// StartEditing enters edit mode, implicitly cancelling an active reply.
func (m *Modes) StartEditing(commentID uint) {
	m.set(commentID, ModeEditing)
}

// StartReplying enters reply mode, implicitly cancelling an active edit.
func (m *Modes) StartReplying(commentID uint) {
	m.set(commentID, ModeReplying)
}

// Cancel returns the comment to viewing without submitting.
func (m *Modes) Cancel(commentID uint) {
	m.set(commentID, ModeViewing)
}

func (m *Modes) set(commentID uint, mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode == ModeViewing {
		delete(m.modes, commentID)
		return
	}
	m.modes[commentID] = mode
}

// BeginSubmit marks a submission in flight. It fails while a previous
// submission for the same comment is still pending.
func (m *Modes) BeginSubmit(commentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight[commentID] {
		return models.NewValidationError("A submission is already in progress")
	}
	m.inFlight[commentID] = true
	return nil
}

// EndSubmit clears the in-flight flag; on success the comment returns to
// viewing, on failure it stays in its mode so the input can be retried.
func (m *Modes) EndSubmit(commentID uint, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, commentID)
	if ok {
		delete(m.modes, commentID)
	}
}

package input

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultBlurGrace is how long a blur waits before it counts.
const DefaultBlurGrace = 100 * time.Millisecond

// Event is what an Update did to the field.
type Event int

const (
	EventNone Event = iota
	// EventChanged means the text differs from the previous value.
	EventChanged
	// EventBlurExpired means the latest blur outlived its grace period.
	EventBlurExpired
)

type blurMsg struct {
	owner uint64
	token uint64
}

var owners atomic.Uint64

// Options configures a Handler.
type Options struct {
	Placeholder string
	Prompt      string
	CharLimit   int
	Width       int
	BlurGrace   time.Duration
	// StaticCursor turns off cursor blinking.
	StaticCursor bool
}

// Handler owns the text value and the focus lifecycle of the search input.
// A blur is not final until its grace timer fires; a later Focus or Blur
// supersedes a pending timer.
type Handler struct {
	textInput textinput.Model
	last      string
	blurGrace time.Duration

	owner     uint64
	blurToken uint64
	pending   bool
}

// New creates an unfocused input.
func New(opts Options) *Handler {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.Prompt = opts.Prompt
	if opts.CharLimit > 0 {
		ti.CharLimit = opts.CharLimit
	}
	if opts.Width > 0 {
		ti.Width = opts.Width
	}
	if opts.StaticCursor {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}

	grace := opts.BlurGrace
	if grace <= 0 {
		grace = DefaultBlurGrace
	}

	return &Handler{
		textInput: ti,
		blurGrace: grace,
		owner:     owners.Add(1),
	}
}

// Value returns the displayed text.
func (h *Handler) Value() string {
	return h.textInput.Value()
}

// SetValue replaces the displayed text without reporting a change.
func (h *Handler) SetValue(s string) {
	h.textInput.SetValue(s)
	h.textInput.CursorEnd()
	h.last = h.textInput.Value()
}

// Focused reports whether the input takes keystrokes.
func (h *Handler) Focused() bool {
	return h.textInput.Focused()
}

// BlurPending reports whether a blur grace timer is running.
func (h *Handler) BlurPending() bool {
	return h.pending
}

// Focus gives the input focus and cancels a pending blur.
func (h *Handler) Focus() tea.Cmd {
	h.cancelBlur()
	return h.textInput.Focus()
}

// Blur removes focus and starts the grace timer.
func (h *Handler) Blur() tea.Cmd {
	h.textInput.Blur()
	h.blurToken++
	h.pending = true
	msg := blurMsg{owner: h.owner, token: h.blurToken}
	return tea.Tick(h.blurGrace, func(time.Time) tea.Msg { return msg })
}

// Release removes focus immediately, with no grace timer.
func (h *Handler) Release() {
	h.cancelBlur()
	h.textInput.Blur()
}

// Update feeds msg to the text input. Keystrokes are only taken while focused.
func (h *Handler) Update(msg tea.Msg) (Event, tea.Cmd) {
	switch msg := msg.(type) {
	case blurMsg:
		if msg.owner != h.owner || msg.token != h.blurToken || !h.pending {
			return EventNone, nil
		}
		h.pending = false
		return EventBlurExpired, nil

	case tea.KeyMsg:
		if !h.textInput.Focused() {
			return EventNone, nil
		}
	}

	var cmd tea.Cmd
	h.textInput, cmd = h.textInput.Update(msg)

	if v := h.textInput.Value(); v != h.last {
		h.last = v
		return EventChanged, cmd
	}
	return EventNone, cmd
}

// View renders the input line.
func (h *Handler) View() string {
	return h.textInput.View()
}

// SetWidth sets the visible width of the input.
func (h *Handler) SetWidth(w int) {
	if w > 0 {
		h.textInput.Width = w
	}
}

// Model exposes the underlying text input for styling.
func (h *Handler) Model() *textinput.Model {
	return &h.textInput
}

func (h *Handler) cancelBlur() {
	h.blurToken++
	h.pending = false
}

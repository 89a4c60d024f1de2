package selection

import "geosearch/internal/domain"

// State is the dropdown state. Exactly one applies at a time.
type State int

const (
	Closed State = iota
	OpenLoading
	OpenWithResults
	OpenEmpty
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenLoading:
		return "open-loading"
	case OpenWithResults:
		return "open-with-results"
	case OpenEmpty:
		return "open-empty"
	default:
		return "unknown"
	}
}

// IsOpen reports whether the dropdown is visible.
func (s State) IsOpen() bool {
	return s != Closed
}

// Key is a navigation key the machine understands.
type Key int

const (
	KeyNone Key = iota
	KeyDown
	KeyUp
	KeyEnter
	KeyEscape
	KeyTab
)

// Action is what the owner of the machine should do after a key.
type Action interface {
	Type() string
}

// SelectAction commits the option at Index.
type SelectAction struct {
	Index    int
	Location domain.Location
}

func (a SelectAction) Type() string { return "select" }

// RedispatchAction asks for Query to be searched again and the dropdown reopened.
type RedispatchAction struct {
	Query string
}

func (a RedispatchAction) Type() string { return "redispatch" }

// NavigateAction reports the new highlighted index.
type NavigateAction struct {
	Index int
}

func (a NavigateAction) Type() string { return "navigate" }

// CloseAction reports that the dropdown closed without a selection.
type CloseAction struct{}

func (a CloseAction) Type() string { return "close" }

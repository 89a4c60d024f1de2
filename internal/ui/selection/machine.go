package selection

import "geosearch/internal/domain"

// DefaultHeight is the number of option rows visible at once.
const DefaultHeight = 6

// Machine owns dropdown visibility, the option list and the highlighted index.
//
// The highlighted index is -1 or a valid index into the option list. It goes
// back to -1 whenever the list is replaced or the dropdown closes.
type Machine struct {
	state       State
	results     []domain.Location
	highlighted int

	offset int
	height int
}

// New creates a closed machine showing at most height options at once.
func New(height int) *Machine {
	if height < 1 {
		height = DefaultHeight
	}
	return &Machine{
		state:       Closed,
		results:     []domain.Location{},
		highlighted: -1,
		height:      height,
	}
}

// State returns the current dropdown state.
func (m *Machine) State() State {
	return m.state
}

// Results returns the options the dropdown lists.
func (m *Machine) Results() []domain.Location {
	return m.results
}

// Highlighted returns the highlighted index, or -1.
func (m *Machine) Highlighted() int {
	return m.highlighted
}

// HighlightedLocation returns the highlighted option if there is one.
func (m *Machine) HighlightedLocation() (domain.Location, bool) {
	if !m.valid(m.highlighted) {
		return domain.Location{}, false
	}
	return m.results[m.highlighted], true
}

// Open shows the dropdown and clears the highlight. loading picks
// OpenLoading, otherwise the option list decides.
func (m *Machine) Open(loading bool) {
	m.highlighted = -1
	m.settle(loading)
}

// BeginLoading moves an open dropdown to OpenLoading. A closed dropdown stays
// closed.
func (m *Machine) BeginLoading() {
	if m.state.IsOpen() {
		m.state = OpenLoading
	}
}

// SetResults replaces the option list. The highlight and scroll position are
// reset. If the dropdown is open its state follows the new list.
func (m *Machine) SetResults(results []domain.Location, loading bool) {
	if results == nil {
		results = []domain.Location{}
	}
	m.results = results
	m.highlighted = -1
	m.offset = 0
	if m.state.IsOpen() {
		m.settle(loading)
	}
}

// Close hides the dropdown and clears the highlight.
func (m *Machine) Close() {
	m.state = Closed
	m.highlighted = -1
}

// MoveDown advances the highlight, wrapping past the last option.
func (m *Machine) MoveDown() {
	n := len(m.results)
	if !m.state.IsOpen() || n == 0 {
		return
	}
	m.highlighted = (m.highlighted + 1) % n
	m.ensureVisible()
}

// MoveUp retreats the highlight, wrapping below the first option.
func (m *Machine) MoveUp() {
	n := len(m.results)
	if !m.state.IsOpen() || n == 0 {
		return
	}
	if m.highlighted <= 0 {
		m.highlighted = n - 1
	} else {
		m.highlighted--
	}
	m.ensureVisible()
}

// Hover highlights the option at index without closing.
func (m *Machine) Hover(index int) {
	if !m.state.IsOpen() || !m.valid(index) {
		return
	}
	m.highlighted = index
}

// Select closes the dropdown and returns the option at index.
func (m *Machine) Select(index int) (domain.Location, bool) {
	if !m.valid(index) {
		return domain.Location{}, false
	}
	loc := m.results[index]
	m.Close()
	return loc, true
}

// HandleKey applies a navigation key. It returns nil when the key has no
// effect on the dropdown, in which case the caller passes it on.
func (m *Machine) HandleKey(key Key, text string) Action {
	if !m.state.IsOpen() {
		return nil
	}

	switch key {
	case KeyDown:
		if len(m.results) == 0 {
			return nil
		}
		m.MoveDown()
		return NavigateAction{Index: m.highlighted}

	case KeyUp:
		if len(m.results) == 0 {
			return nil
		}
		m.MoveUp()
		return NavigateAction{Index: m.highlighted}

	case KeyEnter:
		if m.valid(m.highlighted) {
			index := m.highlighted
			loc, _ := m.Select(index)
			return SelectAction{Index: index, Location: loc}
		}
		if text != "" {
			return RedispatchAction{Query: text}
		}
		return nil

	case KeyEscape:
		m.Close()
		return CloseAction{}

	case KeyTab:
		if m.valid(m.highlighted) {
			index := m.highlighted
			loc, _ := m.Select(index)
			return SelectAction{Index: index, Location: loc}
		}
		return nil
	}
	return nil
}

// SetHeight changes the number of visible rows and keeps the highlight in view.
func (m *Machine) SetHeight(height int) {
	if height < 1 {
		height = 1
	}
	m.height = height
	m.ensureVisible()
}

// Height returns the number of visible rows.
func (m *Machine) Height() int {
	return m.height
}

// Offset returns the index of the first visible option.
func (m *Machine) Offset() int {
	return m.offset
}

// Window returns the half-open range of option indexes currently visible.
func (m *Machine) Window() (start, end int) {
	start = m.offset
	end = start + m.height
	if end > len(m.results) {
		end = len(m.results)
	}
	if start > end {
		start = end
	}
	return start, end
}

func (m *Machine) settle(loading bool) {
	switch {
	case loading:
		m.state = OpenLoading
	case len(m.results) > 0:
		m.state = OpenWithResults
	default:
		m.state = OpenEmpty
	}
}

// ensureVisible scrolls the nearest edge of the window to the highlight.
func (m *Machine) ensureVisible() {
	if m.highlighted < 0 {
		return
	}
	if m.highlighted < m.offset {
		m.offset = m.highlighted
	} else if m.highlighted >= m.offset+m.height {
		m.offset = m.highlighted - m.height + 1
	}
}

func (m *Machine) valid(index int) bool {
	return index >= 0 && index < len(m.results)
}

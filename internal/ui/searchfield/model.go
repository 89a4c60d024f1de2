package searchfield

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"geosearch/internal/domain"
	"geosearch/internal/logging"
	"geosearch/internal/ui/dispatch"
	"geosearch/internal/ui/input"
	"geosearch/internal/ui/pointer"
	"geosearch/internal/ui/selection"
	"geosearch/internal/ui/views"
)

const (
	DefaultPlaceholder   = "Search for a location..."
	DefaultNoResultsText = "No locations found"
	DefaultLoadingText   = "Searching..."
	DefaultIcon          = "⌕"
)

// SelectionChangedMsg carries the location the user picked, or nil.
type SelectionChangedMsg struct {
	Location *domain.Location
}

// SearchFailedMsg reports a failed lookup. The field has already cleared its
// results; presenting the error is up to the host.
type SearchFailedMsg struct {
	Query string
	Err   error
}

// FocusRequestMsg asks the host to give the field focus after a click on it.
type FocusRequestMsg struct{}

// QueryState is a snapshot of the field's transient state.
type QueryState struct {
	Text        string
	Results     []domain.Location
	Loading     bool
	Highlighted int
	State       selection.State
}

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	Context        context.Context
	Searcher       dispatch.Searcher
	Publisher      dispatch.Publisher
	Debounce       time.Duration
	Policy         dispatch.Policy
	Placeholder    string
	NoResultsText  string
	LoadingText    string
	Icon           string
	DropdownHeight int
	BlurGrace      time.Duration
	Width          int
	CursorBlink    bool
	Styles         *views.Styles
	KeyMap         *KeyMap

	// FocusWithin reports whether the host's focused element belongs to the
	// field. Nil means focus never stays inside after a blur.
	FocusWithin func() bool
}

// Model is the location search field: a text input with a dropdown of
// geocoding results.
type Model struct {
	ctx        context.Context
	input      *input.Handler
	dispatcher *dispatch.Dispatcher
	machine    *selection.Machine
	renderer   *views.FieldRenderer
	spinner    spinner.Model
	spinning   bool
	keys       KeyMap

	noResultsText string
	loadingText   string
	icon          string
	focusWithin   func() bool

	selected *domain.Location

	originX, originY int
	layout           views.Layout

	// set by the capture listener when a press lands on an option, consumed
	// by the outside-click listener on the same event
	pressedOption bool
	unsubscribe   []func()
}

// New creates an unfocused, closed field.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(ctx, "searchfield")

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = dispatch.DefaultDebounce
	}
	dispatchOpts := []dispatch.Option{
		dispatch.WithDebounce(debounce),
		dispatch.WithPolicy(opts.Policy),
	}
	if opts.Publisher != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithPublisher(opts.Publisher))
	}

	keys := DefaultKeyMap()
	if opts.KeyMap != nil {
		keys = *opts.KeyMap
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := opts.Styles
	if styles == nil {
		styles = views.NewStyles()
	}
	sp.Style = styles.LoadingIndicator

	m := &Model{
		ctx: ctx,
		input: input.New(input.Options{
			Placeholder:  orDefault(opts.Placeholder, DefaultPlaceholder),
			Width:        opts.Width,
			BlurGrace:    opts.BlurGrace,
			StaticCursor: !opts.CursorBlink,
		}),
		dispatcher:    dispatch.New(ctx, opts.Searcher, dispatchOpts...),
		machine:       selection.New(opts.DropdownHeight),
		renderer:      views.NewFieldRenderer(styles),
		spinner:       sp,
		keys:          keys,
		noResultsText: orDefault(opts.NoResultsText, DefaultNoResultsText),
		loadingText:   orDefault(opts.LoadingText, DefaultLoadingText),
		icon:          orDefault(opts.Icon, DefaultIcon),
		focusWithin:   opts.FocusWithin,
	}
	applyInputStyles(m.input, styles)
	return m
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func applyInputStyles(h *input.Handler, s *views.Styles) {
	ti := h.Model()
	ti.TextStyle = s.Input
	ti.PlaceholderStyle = s.Input.Faint(true)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Mount registers the field's document listeners. Calling it again while
// mounted does nothing.
func (m *Model) Mount(doc *pointer.Document) {
	if doc == nil || len(m.unsubscribe) > 0 {
		return
	}
	m.unsubscribe = append(m.unsubscribe,
		doc.Subscribe(pointer.Capture, m.capturePointer),
		doc.Subscribe(pointer.Bubble, m.outsideClick),
	)
}

// Unmount removes every listener Mount registered.
func (m *Model) Unmount() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
	m.pressedOption = false
}

// Mounted reports whether document listeners are registered.
func (m *Model) Mounted() bool {
	return len(m.unsubscribe) > 0
}

// Focus gives the input focus and opens the dropdown with whatever results
// are already there. No search is started.
func (m *Model) Focus() tea.Cmd {
	cmd := m.input.Focus()
	m.machine.Open(m.dispatcher.Loading())
	return cmd
}

// Blur removes focus. The dropdown closes once the grace period has passed,
// unless focus is back inside the field by then.
func (m *Model) Blur() tea.Cmd {
	return m.input.Blur()
}

// Focused reports whether the input takes keystrokes.
func (m *Model) Focused() bool {
	return m.input.Focused()
}

// SetSelected tells the field about the externally owned selection. When the
// value changed and its label differs from the text, the text is replaced;
// nil clears it.
func (m *Model) SetSelected(loc *domain.Location) {
	if sameSelection(m.selected, loc) {
		return
	}
	m.selected = loc

	label := ""
	if loc != nil {
		label = loc.Label()
	}
	if m.input.Value() != label {
		logging.FromContext(m.ctx).Debug().Str("label", label).Msg("resynchronizing text with selection")
		m.input.SetValue(label)
	}
}

func sameSelection(a, b *domain.Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Same(*b) && a.Label() == b.Label()
}

// Selected returns the last selection the host reported.
func (m *Model) Selected() *domain.Location {
	return m.selected
}

// QueryState returns a snapshot of text, results, loading and highlight.
func (m *Model) QueryState() QueryState {
	return QueryState{
		Text:        m.input.Value(),
		Results:     m.machine.Results(),
		Loading:     m.dispatcher.Loading(),
		Highlighted: m.machine.Highlighted(),
		State:       m.machine.State(),
	}
}

// SetOrigin places the field on screen for mouse hit-testing.
func (m *Model) SetOrigin(x, y int) {
	m.originX, m.originY = x, y
}

// SetWidth sets the input width in cells.
func (m *Model) SetWidth(w int) {
	m.input.SetWidth(w)
}

// KeyMap returns the dropdown bindings for help rendering.
func (m *Model) KeyMap() KeyMap {
	return m.keys
}

// Update implements the field's side of the Bubble Tea loop.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if change, cmd := m.dispatcher.Update(msg); change.Kind != dispatch.NoChange {
		return tea.Batch(cmd, m.applyChange(change))
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.input.Focused() {
			return nil
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.dispatcher.Loading() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	ev, cmd := m.input.Update(msg)
	if ev == input.EventBlurExpired && (m.focusWithin == nil || !m.focusWithin()) {
		m.machine.Close()
	}
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys.resolve(msg)
	if k != selection.KeyNone {
		switch a := m.machine.HandleKey(k, m.input.Value()).(type) {
		case selection.SelectAction:
			return m.commit(a.Location)
		case selection.RedispatchAction:
			cmd := m.dispatcher.Dispatch(a.Query)
			m.machine.Open(m.dispatcher.Loading())
			return cmd
		case selection.NavigateAction, selection.CloseAction:
			return nil
		}
		if k == selection.KeyTab {
			return nil
		}
	}

	ev, cmd := m.input.Update(msg)
	if ev == input.EventChanged {
		m.machine.Open(m.dispatcher.Loading())
		return tea.Batch(cmd, m.dispatcher.Dispatch(m.input.Value()))
	}
	return cmd
}

func (m *Model) applyChange(change dispatch.Change) tea.Cmd {
	switch change.Kind {
	case dispatch.Started:
		m.machine.BeginLoading()
		if !m.spinning {
			m.spinning = true
			return m.spinner.Tick
		}

	case dispatch.Cleared, dispatch.Completed:
		m.machine.SetResults(m.dispatcher.Results(), m.dispatcher.Loading())

	case dispatch.Failed:
		m.machine.SetResults(m.dispatcher.Results(), m.dispatcher.Loading())
		failed := SearchFailedMsg{Query: change.Query, Err: change.Err}
		return func() tea.Msg { return failed }
	}
	return nil
}

// commit applies a selection: the text shows the label, the dropdown is
// closed, the input loses focus and the host is told.
func (m *Model) commit(loc domain.Location) tea.Cmd {
	m.machine.Close()
	m.input.SetValue(loc.Label())
	m.input.Release()

	logging.FromContext(m.ctx).Info().
		Int64("place_id", loc.PlaceID).
		Str("label", loc.Label()).
		Msg("location selected")

	selected := SelectionChangedMsg{Location: &loc}
	return func() tea.Msg { return selected }
}

func (m *Model) selectIndex(index int) tea.Cmd {
	loc, ok := m.machine.Select(index)
	if !ok {
		return nil
	}
	return m.commit(loc)
}

func (m *Model) local(msg tea.MouseMsg) (int, int) {
	return msg.X - m.originX, msg.Y - m.originY
}

// capturePointer sees every mouse event before bubble listeners do. Motion
// over an option highlights it; a press on an option selects it.
func (m *Model) capturePointer(msg tea.MouseMsg) tea.Cmd {
	x, y := m.local(msg)

	if m.machine.State() == selection.OpenWithResults {
		if idx := m.layout.OptionAt(x, y); idx >= 0 {
			switch {
			case pointer.IsMotion(msg):
				m.machine.Hover(idx)
				return nil
			case pointer.IsPress(msg):
				m.pressedOption = true
				return m.selectIndex(idx)
			}
		}
	}

	if pointer.IsPress(msg) && !m.input.Focused() && m.layout.Bounds.Contains(x, y) {
		return func() tea.Msg { return FocusRequestMsg{} }
	}
	return nil
}

// outsideClick closes the dropdown on a press outside the field, unless the
// press just selected an option.
func (m *Model) outsideClick(msg tea.MouseMsg) tea.Cmd {
	if !pointer.IsPress(msg) {
		return nil
	}
	if m.pressedOption {
		m.pressedOption = false
		return nil
	}

	x, y := m.local(msg)
	if m.layout.Bounds.Contains(x, y) || !m.machine.State().IsOpen() {
		return nil
	}
	logging.FromContext(m.ctx).Debug().Int("x", msg.X).Int("y", msg.Y).Msg("outside click closed dropdown")
	m.machine.Close()
	return nil
}

// View renders the field and records its layout for hit-testing.
func (m *Model) View() string {
	start, end := m.machine.Window()
	out, layout := m.renderer.Render(views.FieldState{
		Input:         m.input.View(),
		Icon:          m.icon,
		State:         m.machine.State(),
		Text:          m.input.Value(),
		Options:       m.machine.Results(),
		Highlighted:   m.machine.Highlighted(),
		Start:         start,
		End:           end,
		Spinner:       m.spinner.View(),
		LoadingText:   m.loadingText,
		NoResultsText: m.noResultsText,
	})
	m.layout = layout
	return out
}

// Layout returns the layout of the last View.
func (m *Model) Layout() views.Layout {
	return m.layout
}

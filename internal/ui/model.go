package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"geosearch/internal/config"
	"geosearch/internal/domain"
	"geosearch/internal/eventbus"
	"geosearch/internal/logging"
	"geosearch/internal/ui/dispatch"
	"geosearch/internal/ui/focus"
	"geosearch/internal/ui/pointer"
	"geosearch/internal/ui/searchfield"
	"geosearch/internal/ui/views"
)

// Focus ring ids
const (
	FocusLocation = "location"
	FocusNote     = "note"
)

const (
	padX          = 2
	padY          = 1
	minFieldWidth = 10
	maxFieldWidth = 60
	fieldChrome   = 10 // borders, divider and icon around the input
)

// App is the host form: a location search field, a free text note and a
// panel describing the chosen location.
type App struct {
	ctx    context.Context
	bus    eventbus.EventBus
	styles *views.Styles
	keys   KeyMap

	field *searchfield.Model
	note  textinput.Model
	ring  *focus.Ring
	doc   *pointer.Document
	help  help.Model

	helpRenderer *HelpRenderer
	showFullHelp bool

	selected  *domain.Location
	status    string
	statusErr bool

	width, height int
	noteRow       int

	program     *tea.Program
	pager       *PagerOps
	inPagerMode bool
	quitting    bool
}

// NewApp creates the form. bus may be nil.
func NewApp(ctx context.Context, cfg *config.Config, searcher dispatch.Searcher, bus eventbus.EventBus) *App {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx = logging.WithComponent(ctx, "app")

	styles := views.NewStyles().Apply(cfg.Styles)

	a := &App{
		ctx:          ctx,
		bus:          bus,
		styles:       styles,
		keys:         DefaultKeyMap(),
		ring:         focus.NewRing(FocusLocation, FocusNote),
		doc:          pointer.NewDocument(),
		help:         help.New(),
		helpRenderer: NewHelpRenderer(),
	}

	opts := searchfield.Options{
		Context:        ctx,
		Searcher:       searcher,
		Debounce:       cfg.Search.Debounce.Std(),
		Policy:         dispatch.ParsePolicy(cfg.Search.StaleResults),
		Placeholder:    cfg.UI.Placeholder,
		NoResultsText:  cfg.UI.NoResultsText,
		LoadingText:    cfg.UI.LoadingText,
		Icon:           cfg.UI.Icon,
		DropdownHeight: cfg.UI.DropdownHeight,
		BlurGrace:      cfg.UI.BlurGrace.Std(),
		CursorBlink:    cfg.UI.CursorBlink,
		Styles:         styles,
		FocusWithin:    func() bool { return a.ring.Is(FocusLocation) },
	}
	if bus != nil {
		opts.Publisher = bus
	}
	a.field = searchfield.New(opts)

	a.note = textinput.New()
	a.note.Placeholder = "Add a note..."
	a.note.Prompt = ""
	a.note.CharLimit = 200
	a.note.Width = 40
	if !cfg.UI.CursorBlink {
		a.note.Cursor.SetMode(cursor.CursorStatic)
	}

	if cfg.UI.Mouse {
		a.field.Mount(a.doc)
		a.doc.Subscribe(pointer.Bubble, a.noteClick)
	}
	return a
}

// SetProgram sets the program reference used to hand the terminal to the pager
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
	a.pager = NewPagerOps(p)
}

// Selected returns the chosen location, or nil.
func (a *App) Selected() *domain.Location {
	return a.selected
}

// Note returns the note text.
func (a *App) Note() string {
	return a.note.Value()
}

// Field returns the location search field.
func (a *App) Field() *searchfield.Model {
	return a.field
}

// Focused returns the focus ring position. After a selection the field has
// released its input but the ring stays on it, so tab moves on to the note.
func (a *App) Focused() string {
	return a.ring.Active()
}

// Status returns the status line text and whether it reports an error.
func (a *App) Status() (string, bool) {
	return a.status, a.statusErr
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.publish(eventbus.AppReadyEvent{})
	return a.focusOn(FocusLocation)
}

func (a *App) publish(ev eventbus.DomainEvent) {
	if a.bus != nil {
		a.bus.Publish(ev)
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		w := msg.Width - 2*padX - fieldChrome
		if w > maxFieldWidth {
			w = maxFieldWidth
		}
		if w < minFieldWidth {
			w = minFieldWidth
		}
		a.field.SetWidth(w)
		a.note.Width = w
		a.help.Width = msg.Width - 2*padX
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		if a.inPagerMode {
			return a, nil
		}
		return a, a.doc.Dispatch(msg)

	case searchfield.FocusRequestMsg:
		return a, a.focusOn(FocusLocation)

	case searchfield.SelectionChangedMsg:
		a.setSelection(msg.Location)
		return a, nil

	case searchfield.SearchFailedMsg:
		logging.FromContext(a.ctx).Warn().Err(msg.Err).Str("query", msg.Query).Msg("search failed")
		a.status = fmt.Sprintf("Search for %q failed: %v", msg.Query, msg.Err)
		a.statusErr = true
		return a, nil

	case EventMsg:
		a.handleEvent(msg.Event)
		return a, nil

	case pagerMsg:
		if msg.err != nil {
			logging.FromContext(a.ctx).Error().Err(msg.err).Msg("pager failed")
			a.status = fmt.Sprintf("Pager failed: %v", msg.err)
			a.statusErr = true
		}
		return a, nil

	case pauseRenderingMsg:
		a.inPagerMode = true
		return a, nil

	case resumeRenderingMsg:
		a.inPagerMode = false
		return a, nil
	}

	// timers, results and cursor blinks
	fieldCmd := a.field.Update(msg)
	var noteCmd tea.Cmd
	a.note, noteCmd = a.note.Update(msg)
	return a, tea.Batch(fieldCmd, noteCmd)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, a.keys.Help):
		return a.showHelp()

	case key.Matches(msg, a.keys.Details):
		return a.showDetails()

	case key.Matches(msg, a.keys.Reset):
		a.setSelection(nil)
		return nil

	case key.Matches(msg, a.keys.Next):
		var cmd tea.Cmd
		if a.ring.Is(FocusLocation) {
			// the field may take the highlighted option first
			cmd = a.field.Update(msg)
		}
		return tea.Batch(cmd, a.moveFocus(true))

	case key.Matches(msg, a.keys.Prev):
		return a.moveFocus(false)
	}

	switch a.ring.Active() {
	case FocusLocation:
		return a.field.Update(msg)
	case FocusNote:
		var cmd tea.Cmd
		a.note, cmd = a.note.Update(msg)
		return cmd
	}
	return nil
}

// setSelection records the chosen location and hands it back to the field.
func (a *App) setSelection(loc *domain.Location) {
	a.selected = loc
	a.field.SetSelected(loc)
	a.publish(eventbus.SelectionChangedEvent{Location: loc})

	a.statusErr = false
	if loc == nil {
		a.status = "Location cleared"
		return
	}
	a.status = "Selected " + loc.Label()
}

func (a *App) handleEvent(ev eventbus.DomainEvent) {
	switch e := ev.(type) {
	case eventbus.SearchCompletedEvent:
		a.status = fmt.Sprintf("%d results for %q in %s", e.Count, e.Query, e.Duration.Round(time.Millisecond))
		a.statusErr = false
	}
}

func (a *App) moveFocus(forward bool) tea.Cmd {
	prev := a.ring.Active()
	var next string
	if forward {
		next = a.ring.Next()
	} else {
		next = a.ring.Prev()
	}
	logging.FromContext(a.ctx).Debug().Str("from", prev).Str("to", next).Msg("focus moved")
	return tea.Batch(a.blur(prev), a.focus(next))
}

func (a *App) focusOn(id string) tea.Cmd {
	prev := a.ring.Active()
	if !a.ring.Set(id) {
		return nil
	}
	var cmd tea.Cmd
	if prev != id {
		cmd = a.blur(prev)
	}
	return tea.Batch(cmd, a.focus(id))
}

func (a *App) focus(id string) tea.Cmd {
	switch id {
	case FocusLocation:
		return a.field.Focus()
	case FocusNote:
		return a.note.Focus()
	}
	return nil
}

func (a *App) blur(id string) tea.Cmd {
	switch id {
	case FocusLocation:
		return a.field.Blur()
	case FocusNote:
		a.note.Blur()
	}
	return nil
}

// noteClick focuses the note when its row is pressed.
func (a *App) noteClick(msg tea.MouseMsg) tea.Cmd {
	if !pointer.IsPress(msg) || a.noteRow == 0 || msg.Y != a.noteRow || a.ring.Is(FocusNote) {
		return nil
	}
	return a.focusOn(FocusNote)
}

func (a *App) showHelp() tea.Cmd {
	if a.program == nil {
		a.showFullHelp = !a.showFullHelp
		return nil
	}
	return a.runPager(a.helpRenderer.Render(a.field.KeyMap(), a.keys))
}

func (a *App) showDetails() tea.Cmd {
	if a.selected == nil {
		a.status = "No location selected"
		a.statusErr = false
		return nil
	}
	content, err := LocationJSON(a.selected)
	if err != nil {
		a.status = err.Error()
		a.statusErr = true
		return nil
	}
	if a.program == nil {
		a.status = "Pager needs a terminal"
		a.statusErr = true
		return nil
	}
	return a.runPager(content)
}

// runPager returns a command that shows content in ov, pausing rendering
// while the pager owns the terminal
func (a *App) runPager(content string) tea.Cmd {
	return func() tea.Msg {
		a.program.Send(pauseRenderingMsg{})
		err := a.pager.Show(content)
		a.program.Send(resumeRenderingMsg{})
		return pagerMsg{err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting || a.inPagerMode {
		return ""
	}
	st := a.styles

	header := lipgloss.JoinVertical(lipgloss.Left,
		st.Title.Render("geosearch"),
		st.Label.Render("Location"),
	)
	fieldTop := padY + lipgloss.Height(header)
	a.field.SetOrigin(padX, fieldTop)
	field := a.field.View()

	noteLabel := st.Label.Render("Note")
	a.noteRow = fieldTop + lipgloss.Height(field) + 1 + lipgloss.Height(noteLabel)

	status := st.Status.Render(a.status)
	if a.statusErr {
		status = st.StatusError.Render(a.status)
	}

	a.help.ShowAll = a.showFullHelp
	keys := a.help.View(a.keys)
	if a.ring.Is(FocusLocation) {
		keys = a.help.View(a.field.KeyMap()) + "\n" + keys
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		field,
		"",
		noteLabel,
		a.note.View(),
		"",
		renderDetails(st, a.selected, a.width-2*padX),
		status,
		st.Help.Render(keys),
	)
	return lipgloss.NewStyle().Padding(padY, padX).Render(body)
}

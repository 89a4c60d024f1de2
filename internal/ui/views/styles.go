package views

import (
	"github.com/charmbracelet/lipgloss"

	"geosearch/internal/config"
)

// Region names a styleable part of the search field.
type Region string

const (
	RegionRoot              Region = "root"
	RegionForm              Region = "form"
	RegionInputWrapper      Region = "input-wrapper"
	RegionInput             Region = "input"
	RegionDivider           Region = "divider"
	RegionButton            Region = "button"
	RegionDropdown          Region = "dropdown"
	RegionOptionsList       Region = "options-list"
	RegionOption            Region = "option"
	RegionOptionHighlighted Region = "option-highlighted"
	RegionEmptyState        Region = "empty-state"
	RegionLoadingIndicator  Region = "loading-indicator"
)

// Styles contains the style of every region plus the host's chrome.
type Styles struct {
	Root              lipgloss.Style
	Form              lipgloss.Style
	InputWrapper      lipgloss.Style
	Input             lipgloss.Style
	Divider           lipgloss.Style
	Button            lipgloss.Style
	Dropdown          lipgloss.Style
	OptionsList       lipgloss.Style
	Option            lipgloss.Style
	OptionHighlighted lipgloss.Style
	EmptyState        lipgloss.Style
	LoadingIndicator  lipgloss.Style

	Title       lipgloss.Style
	Label       lipgloss.Style
	Dim         lipgloss.Style
	Help        lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Details     lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Root: lipgloss.NewStyle(),
		Form: lipgloss.NewStyle(),
		InputWrapper: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Input:   lipgloss.NewStyle(),
		Divider: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
		Button:  lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderTop(false).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		OptionsList:       lipgloss.NewStyle(),
		Option:            lipgloss.NewStyle(),
		OptionHighlighted: lipgloss.NewStyle().Background(lipgloss.Color("238")).Foreground(lipgloss.Color("226")).Bold(true),
		EmptyState:        lipgloss.NewStyle().Faint(true).Italic(true),
		LoadingIndicator:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Label:       lipgloss.NewStyle().Bold(true),
		Dim:         lipgloss.NewStyle().Faint(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Details: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
	}
}

// Region returns a pointer to the style of r, or nil for unknown names.
func (s *Styles) Region(r Region) *lipgloss.Style {
	switch r {
	case RegionRoot:
		return &s.Root
	case RegionForm:
		return &s.Form
	case RegionInputWrapper:
		return &s.InputWrapper
	case RegionInput:
		return &s.Input
	case RegionDivider:
		return &s.Divider
	case RegionButton:
		return &s.Button
	case RegionDropdown:
		return &s.Dropdown
	case RegionOptionsList:
		return &s.OptionsList
	case RegionOption:
		return &s.Option
	case RegionOptionHighlighted:
		return &s.OptionHighlighted
	case RegionEmptyState:
		return &s.EmptyState
	case RegionLoadingIndicator:
		return &s.LoadingIndicator
	}
	return nil
}

// Apply layers the configured overrides on top of the current styles. Only
// fields set in an override change; unknown regions are ignored.
func (s *Styles) Apply(overrides map[string]config.StyleConfig) *Styles {
	for name, o := range overrides {
		st := s.Region(Region(name))
		if st == nil {
			continue
		}
		*st = applyOverride(*st, o)
	}
	return s
}

func applyOverride(st lipgloss.Style, o config.StyleConfig) lipgloss.Style {
	if o.Foreground != "" {
		st = st.Foreground(lipgloss.Color(o.Foreground))
	}
	if o.Background != "" {
		st = st.Background(lipgloss.Color(o.Background))
	}
	if o.Bold != nil {
		st = st.Bold(*o.Bold)
	}
	if o.Italic != nil {
		st = st.Italic(*o.Italic)
	}
	if o.Faint != nil {
		st = st.Faint(*o.Faint)
	}
	if o.Underline != nil {
		st = st.Underline(*o.Underline)
	}
	if o.Border != "" {
		if b, ok := borderByName(o.Border); ok {
			st = st.Border(b)
		} else {
			st = st.UnsetBorderStyle().BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false)
		}
	}
	if o.BorderForeground != "" {
		st = st.BorderForeground(lipgloss.Color(o.BorderForeground))
	}
	if len(o.Padding) > 0 {
		st = st.Padding(o.Padding...)
	}
	if len(o.Margin) > 0 {
		st = st.Margin(o.Margin...)
	}
	if o.Width > 0 {
		st = st.Width(o.Width)
	}
	return st
}

func borderByName(name string) (lipgloss.Border, bool) {
	switch name {
	case "normal":
		return lipgloss.NormalBorder(), true
	case "rounded":
		return lipgloss.RoundedBorder(), true
	case "thick":
		return lipgloss.ThickBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	case "hidden":
		return lipgloss.HiddenBorder(), true
	}
	return lipgloss.Border{}, false
}

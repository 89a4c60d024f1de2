package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"geosearch/internal/domain"
	"geosearch/internal/ui/selection"
)

// FieldState contains all the state needed to render the search field
type FieldState struct {
	Input         string // rendered text input line
	Icon          string
	State         selection.State
	Text          string
	Options       []domain.Location
	Highlighted   int
	Start, End    int // visible option window
	Spinner       string
	LoadingText   string
	NoResultsText string
}

// Rect is a cell rectangle relative to the field's top-left corner.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// OptionRect is the area one option occupies.
type OptionRect struct {
	Index int
	Rect
}

// Layout records where the last render placed things, for mouse hit-testing.
type Layout struct {
	Bounds  Rect
	Input   Rect
	Options []OptionRect
}

// OptionAt returns the index of the option under (x, y), or -1.
func (l Layout) OptionAt(x, y int) int {
	for _, o := range l.Options {
		if o.Contains(x, y) {
			return o.Index
		}
	}
	return -1
}

// FieldRenderer draws the search field
type FieldRenderer struct {
	styles *Styles
}

// NewFieldRenderer creates a new field renderer
func NewFieldRenderer(styles *Styles) *FieldRenderer {
	if styles == nil {
		styles = NewStyles()
	}
	return &FieldRenderer{styles: styles}
}

// Styles returns the styles in use.
func (r *FieldRenderer) Styles() *Styles {
	return r.styles
}

// Render returns the field and the layout of what it drew.
func (r *FieldRenderer) Render(s FieldState) (string, Layout) {
	st := r.styles
	var layout Layout

	input := st.Input.Render(s.Input)
	divider := st.Divider.Render("│")
	button := st.Button.Render(s.Icon)
	row := lipgloss.JoinHorizontal(lipgloss.Center, input, divider, button)
	form := st.Form.Render(st.InputWrapper.Render(row))

	rootLeft, rootTop := leftFrame(st.Root), topFrame(st.Root)
	layout.Input = Rect{
		X: rootLeft + leftFrame(st.Form) + leftFrame(st.InputWrapper),
		Y: rootTop + topFrame(st.Form) + topFrame(st.InputWrapper),
		W: lipgloss.Width(input),
		H: lipgloss.Height(input),
	}

	blocks := []string{form}
	innerWidth := lipgloss.Width(form) - st.Dropdown.GetHorizontalFrameSize() - st.OptionsList.GetHorizontalFrameSize()
	if innerWidth < 1 {
		innerWidth = 1
	}

	var dropdown string
	switch s.State {
	case selection.OpenLoading:
		text := strings.TrimSpace(s.Spinner + " " + s.LoadingText)
		dropdown = st.Dropdown.Render(st.LoadingIndicator.Render(text))

	case selection.OpenEmpty:
		if s.Text != "" {
			dropdown = st.Dropdown.Render(st.EmptyState.Render(s.NoResultsText))
		}

	case selection.OpenWithResults:
		var rows []string
		y := rootTop + lipgloss.Height(form) + topFrame(st.Dropdown) + topFrame(st.OptionsList)
		x := rootLeft + leftFrame(st.Dropdown) + leftFrame(st.OptionsList)
		for i := s.Start; i < s.End && i < len(s.Options); i++ {
			style := st.Option
			if i == s.Highlighted {
				style = st.OptionHighlighted.Inherit(st.Option)
			}
			w := innerWidth - style.GetHorizontalFrameSize()
			if w < 1 {
				w = 1
			}
			label := ansi.Truncate(s.Options[i].Label(), w, "…")
			rendered := style.Width(w).Render(label)
			h := lipgloss.Height(rendered)
			layout.Options = append(layout.Options, OptionRect{
				Index: i,
				Rect:  Rect{X: x, Y: y, W: lipgloss.Width(rendered), H: h},
			})
			rows = append(rows, rendered)
			y += h
		}
		dropdown = st.Dropdown.Render(st.OptionsList.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}
	if dropdown != "" {
		blocks = append(blocks, dropdown)
	}

	out := st.Root.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
	layout.Bounds = Rect{W: lipgloss.Width(out), H: lipgloss.Height(out)}
	return out, layout
}

func topFrame(s lipgloss.Style) int {
	return s.GetMarginTop() + s.GetBorderTopSize() + s.GetPaddingTop()
}

func leftFrame(s lipgloss.Style) int {
	return s.GetMarginLeft() + s.GetBorderLeftSize() + s.GetPaddingLeft()
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"geosearch/internal/ui/searchfield"
)

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	err error
}

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	title  lipgloss.Style
	header lipgloss.Style
	key    lipgloss.Style
	desc   lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		key:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		desc: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// Render generates help content with colors for the pager
func (r *HelpRenderer) Render(field searchfield.KeyMap, app KeyMap) string {
	var help strings.Builder

	help.WriteString(r.title.Render("geosearch Help"))
	help.WriteString("\n")

	r.section(&help, "Location field", field.Down, field.Up, field.Select, field.Commit, field.Close)
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Type at least 3 characters to search. Click an option to select it."))
	help.WriteString("\n")

	r.section(&help, "Form", app.Next, app.Prev, app.Reset)
	r.section(&help, "Other", app.Details, app.Help, app.Quit)

	return strings.TrimRight(help.String(), "\n")
}

func (r *HelpRenderer) section(b *strings.Builder, title string, bindings ...key.Binding) {
	b.WriteString(r.header.Render(title))
	b.WriteString("\n")

	width := 0
	for _, kb := range bindings {
		if w := lipgloss.Width(kb.Help().Key); w > width {
			width = w
		}
	}
	for _, kb := range bindings {
		h := kb.Help()
		pad := strings.Repeat(" ", width-lipgloss.Width(h.Key)+2)
		fmt.Fprintf(b, "  %s%s%s\n", r.key.Render(h.Key), pad, r.desc.Render(h.Desc))
	}
}

// PagerOps runs content in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// Show displays content using the ov pager
func (p *PagerOps) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// give ov time to leave the alternate screen
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

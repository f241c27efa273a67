// Package tui implements a small, read-only Bubble Tea inspector for a
// compiled unit: it pages through the TM instruction listing and the
// symbol-table listing side by side, adapted from the teacher's REPL
// model shape.
//
// It is deliberately read-only. spec.md is explicit that evaluating the
// generated TM code is a non-goal of this system, so Update here only
// ever moves a viewport's scroll position or switches which pane has
// focus — it never interprets an instruction.
package tui

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luccarhaddad/cminus/compiler"
	"github.com/luccarhaddad/cminus/listing"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	focusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	blurredBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#767676"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

// pane identifies which of the two viewports currently has focus and
// receives scroll key presses.
type pane int

const (
	paneCode pane = iota
	paneSymbols
)

// Model is the inspector's Bubble Tea model: two independent viewports
// (instruction listing, symbol table), a unit name for the title bar,
// and which pane currently scrolls on arrow-key input.
type Model struct {
	unitName string
	code     viewport.Model
	symbols  viewport.Model
	focus    pane
	ready    bool
}

// New builds a Model from a finished compiler.Result. unitName is shown
// in the title bar (typically the source file's name).
func New(unitName string, result compiler.Result) Model {
	var codeBuf, symBuf bytes.Buffer
	_ = listing.Code(&codeBuf, result.Code)
	_ = listing.SymbolTable(&symBuf, result.Global, result.DeclaredMain)

	m := Model{unitName: unitName}
	m.code = viewport.New(0, 0)
	m.code.SetContent(codeBuf.String())
	m.symbols = viewport.New(0, 0)
	m.symbols.SetContent(symBuf.String())
	return m
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model. Tab switches focus between the code and
// symbol-table panes; arrow keys and page up/down scroll whichever pane
// is focused; q or ctrl+c quits.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.focus == paneCode {
				m.focus = paneSymbols
			} else {
				m.focus = paneCode
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == paneCode {
		m.code, cmd = m.code.Update(msg)
	} else {
		m.symbols, cmd = m.symbols.Update(msg)
	}
	return m, cmd
}

// layout splits the terminal between the two panes once a WindowSizeMsg
// arrives, matching the teacher's lazy-sizing convention for
// Bubble Tea models that don't know their size until the first message.
func (m *Model) layout(width, height int) {
	half := width/2 - 2
	bodyHeight := height - 4

	m.code.Width, m.code.Height = half, bodyHeight
	m.symbols.Width, m.symbols.Height = half, bodyHeight
	m.ready = true
}

// View satisfies tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "initializing…"
	}

	title := titleStyle.Render(fmt.Sprintf("cminus inspector — %s", m.unitName))

	codeBorder, symBorder := blurredBorder, blurredBorder
	if m.focus == paneCode {
		codeBorder = focusedBorder
	} else {
		symBorder = focusedBorder
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		codeBorder.Render(m.code.View()),
		symBorder.Render(m.symbols.View()),
	)

	help := helpStyle.Render("tab: switch pane • ↑/↓/pgup/pgdn: scroll • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, panes, help)
}

// Run starts the inspector as a Bubble Tea program.
func Run(unitName string, result compiler.Result) error {
	p := tea.NewProgram(New(unitName, result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package review is a small Bubble Tea program that shows a pending diff and
// asks whether to commit it.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Decision int

const (
	DecisionPending Decision = iota
	DecisionCommit
	DecisionAbandon
)

func (d Decision) String() string {
	switch d {
	case DecisionCommit:
		return "commit"
	case DecisionAbandon:
		return "abandon"
	default:
		return "pending"
	}
}

type KeyMap struct {
	Commit, Abandon key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Commit:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y/enter", "commit")),
		Abandon: key.NewBinding(key.WithKeys("n", "q", "esc", "ctrl+c"), key.WithHelp("n/q", "abandon")),
	}
}

type Style struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Hunk    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Help    lipgloss.Style
}

func DefaultStyle() Style {
	return Style{
		Title:   lipgloss.NewStyle().Bold(true),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Hunk:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Added:   lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Removed: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Model shows the diff in a scrollable viewport. Title and help take one
// row each.
type Model struct {
	title    string
	diff     string
	keys     KeyMap
	style    Style
	viewport viewport.Model
	decision Decision
}

func New(title, diffText string) Model {
	m := Model{
		title:    title,
		diff:     diffText,
		keys:     DefaultKeyMap(),
		style:    DefaultStyle(),
		viewport: viewport.New(80, 20),
	}
	m.viewport.SetContent(m.renderDiff())
	return m
}

func (m Model) Decision() Decision { return m.decision }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-2)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Commit):
			m.decision = DecisionCommit
			return m, tea.Quit
		case key.Matches(msg, m.keys.Abandon):
			m.decision = DecisionAbandon
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	help := fmt.Sprintf("%s %s • %s %s • ↑/↓ scroll",
		m.keys.Commit.Help().Key, m.keys.Commit.Help().Desc,
		m.keys.Abandon.Help().Key, m.keys.Abandon.Help().Desc)
	return m.style.Title.Render(m.title) + "\n" + m.viewport.View() + "\n" + m.style.Help.Render(help)
}

func (m Model) renderDiff() string {
	lines := strings.Split(strings.TrimSuffix(m.diff, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "---"), strings.HasPrefix(l, "+++"):
			lines[i] = m.style.Header.Render(l)
		case strings.HasPrefix(l, "@@"):
			lines[i] = m.style.Hunk.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = m.style.Added.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = m.style.Removed.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// Run shows the review until the user decides or ctx is done. A canceled
// review counts as abandon.
func Run(ctx context.Context, title, diffText string, opts ...tea.ProgramOption) (Decision, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(title, diffText), opts...).Run()
	if err != nil {
		return DecisionAbandon, fmt.Errorf("review: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.decision == DecisionPending {
		return DecisionAbandon, nil
	}
	return m.decision, nil
}

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// Global binds. They win over tab-local binds on a key collision, except in
// text-input mode where the focused tab sees every key.
var globalBinds = []KeyBind{
	NewKeyBind("quit", "quit", "q", "ctrl+c"),
	NewKeyBind("prev-tab", "prev tab", "ctrl+left"),
	NewKeyBind("next-tab", "next tab", "ctrl+right"),
	NewKeyBind("new-tab", "new tab", "ctrl+t"),
	NewKeyBind("close-tab", "close tab", "ctrl+w"),
	NewKeyBind("clear-tabs", "clear tabs", "ctrl+l"),
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	footerKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7"))
	footerStyle      = lipgloss.NewStyle().Faint(true)
)

// model drives the session: it owns no state of its own beyond the window
// size; tabs, selection, and flags all live in the context's Tui resource so
// tab handlers can mutate them.
type model struct {
	c      *framework.Context
	width  int
	height int
}

func newModel(c *framework.Context) model {
	return model{c: c, width: 80, height: 24}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		t, err := framework.MustResource[Tui](m.c)
		if err != nil {
			return m, tea.Quit
		}
		if t.TextInput() {
			m.dispatchText(t, msg)
		} else if !m.dispatchGlobal(t, msg) {
			m.dispatchTab(t, msg)
		}
		if t.ShouldQuit() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) dispatchGlobal(t *Tui, msg tea.KeyMsg) bool {
	for _, kb := range globalBinds {
		if !key.Matches(msg, kb.Binding) {
			continue
		}
		switch kb.Name {
		case "quit":
			t.RequestQuit()
		case "prev-tab":
			t.CyclePrev()
		case "next-tab":
			t.CycleNext()
		case "new-tab":
			_, _ = t.AddTab(m.c, ChooserKind)
		case "close-tab":
			if tab, ok := t.Selected(); ok {
				_ = t.CloseTab(m.c, tab.ID)
			}
			if len(t.Tabs()) == 0 {
				_, _ = t.AddTab(m.c, ChooserKind)
			}
		case "clear-tabs":
			t.ClearTabs(m.c)
			_, _ = t.AddTab(m.c, ChooserKind)
		}
		return true
	}
	return false
}

func (m model) dispatchTab(t *Tui, msg tea.KeyMsg) {
	tab, ok := t.Selected()
	if !ok {
		return
	}
	entry, err := kindFor(m.c, tab.Kind)
	if err != nil {
		return
	}
	for _, kb := range entry.impl.Keybinds() {
		if key.Matches(msg, kb.Binding) {
			entry.impl.HandleKey(m.c, kb.Name, tab.ID)
			return
		}
	}
	// Unrecognized keys are dropped.
}

func (m model) dispatchText(t *Tui, msg tea.KeyMsg) {
	tab, ok := t.Selected()
	if !ok {
		t.SetTextInput(false)
		return
	}
	entry, err := kindFor(m.c, tab.Kind)
	if err != nil {
		t.SetTextInput(false)
		return
	}
	th, ok := entry.impl.(TextHandler)
	if !ok {
		t.SetTextInput(false)
		return
	}
	th.HandleText(m.c, msg.String(), tab.ID)
}

func (m model) View() string {
	t, err := framework.MustResource[Tui](m.c)
	if err != nil {
		return ""
	}

	var content string
	tab, ok := t.Selected()
	if ok {
		if entry, err := kindFor(m.c, tab.Kind); err == nil {
			content = entry.impl.Render(m.c, tab.ID, m.width, m.height-3)
		}
	}

	return strings.Join([]string{
		m.renderTabBar(t),
		content,
		m.renderFooter(t),
	}, "\n")
}

func (m model) renderTabBar(t *Tui) string {
	selected, _ := t.Selected()
	var parts []string
	for _, tab := range t.Tabs() {
		title := tab.Kind
		if entry, err := kindFor(m.c, tab.Kind); err == nil {
			title = entry.impl.Title()
		}
		if tab.ID == selected.ID {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m model) renderFooter(t *Tui) string {
	binds := make([]KeyBind, 0, len(globalBinds)+4)
	binds = append(binds, globalBinds...)
	if tab, ok := t.Selected(); ok {
		if entry, err := kindFor(m.c, tab.Kind); err == nil {
			binds = append(binds, entry.impl.Keybinds()...)
		}
	}

	var parts []string
	for _, kb := range binds {
		h := kb.Binding.Help()
		parts = append(parts, footerKeyStyle.Render("<"+h.Key+">")+footerStyle.Render(" "+h.Desc))
	}
	return strings.Join(parts, " ")
}

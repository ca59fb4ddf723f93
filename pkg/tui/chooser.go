package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// ChooserKind is the built-in "new tab" kind. A fresh session opens with one
// chooser tab, and ctrl+t opens another; picking a kind swaps the chooser in
// place via SetTab.
const ChooserKind = "New Tab"

type chooserState struct {
	cursor int
}

type chooserTab struct{}

var (
	chooserItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	chooserSelectedStyle = lipgloss.NewStyle().PaddingLeft(0).Bold(true).Foreground(lipgloss.Color("205"))
)

func (chooserTab) Title() string {
	return ChooserKind
}

// choices lists every registered kind except the chooser itself.
func (chooserTab) choices(c *framework.Context) []string {
	kinds, err := framework.MustResource[TabKinds](c)
	if err != nil {
		return nil
	}
	var names []string
	for _, name := range kinds.Names() {
		if name != ChooserKind {
			names = append(names, name)
		}
	}
	return names
}

func (ct chooserTab) Render(c *framework.Context, id TabID, width, height int) string {
	choices := ct.choices(c)
	if len(choices) == 0 {
		return "No creatable tab types."
	}
	state := State[chooserState](c, id)

	var b strings.Builder
	b.WriteString("Open a new tab:\n\n")
	for i, name := range choices {
		if i == state.cursor {
			b.WriteString(chooserSelectedStyle.Render("> " + name))
		} else {
			b.WriteString(chooserItemStyle.Render(name))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (chooserTab) Keybinds() []KeyBind {
	return []KeyBind{
		NewKeyBind("up", "up", "up", "k"),
		NewKeyBind("down", "down", "down", "j"),
		NewKeyBind("open", "open", "enter"),
	}
}

func (ct chooserTab) HandleKey(c *framework.Context, bind string, id TabID) {
	choices := ct.choices(c)
	if len(choices) == 0 {
		return
	}
	state := State[chooserState](c, id)
	switch bind {
	case "up":
		if state.cursor > 0 {
			state.cursor--
		}
	case "down":
		if state.cursor < len(choices)-1 {
			state.cursor++
		}
	case "open":
		t, err := framework.MustResource[Tui](c)
		if err != nil {
			return
		}
		// SetTab drops this chooser's state, so read the choice first.
		choice := choices[state.cursor]
		_ = t.SetTab(c, id, choice)
	}
}

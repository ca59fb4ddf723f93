// Package tui is the terminal interface: a tab-based session over the
// framework context, rendered with bubbletea. Tab kinds register behavior
// bundles; live tabs are identified by monotonically increasing ids with
// per-kind state arenas, so two tabs of one kind never share state.
package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// TabID identifies one live tab instance. Ids are never reused within a
// session.
type TabID int64

// KeyBind pairs a stable name (what HandleKey receives) with the terminal
// keys that trigger it.
type KeyBind struct {
	Name    string
	Binding key.Binding
}

// NewKeyBind builds a bind triggered by any of keys, shown in the footer as
// "<keys[0]> help".
func NewKeyBind(name, help string, keys ...string) KeyBind {
	return KeyBind{
		Name:    name,
		Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help)),
	}
}

// TabImpl is the behavior bundle of one tab kind. The tab runtime only ever
// talks to tabs through this interface; new kinds plug in without the runtime
// changing. One TabImpl value serves every live tab of its kind, so
// implementations keep per-tab data in the state arena, not in themselves.
type TabImpl interface {
	Title() string
	Render(c *framework.Context, id TabID, width, height int) string
	Keybinds() []KeyBind
	HandleKey(c *framework.Context, bind string, id TabID)
}

// TextHandler is an optional TabImpl extension for kinds that take free text.
// While the session is in text-input mode, every key goes to the focused
// tab's HandleText verbatim (bubbletea key names: runes, "enter", "esc",
// "backspace", …) and global binds are suspended.
type TextHandler interface {
	HandleText(c *framework.Context, key string, id TabID)
}

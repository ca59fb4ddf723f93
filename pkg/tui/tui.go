package tui

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// ErrNoTab is returned by tab operations addressing an id that is not open.
// Callers match with errors.Is.
var ErrNoTab = errors.New("no open tab")

// Tab is one live tab instance: a stable id plus its current kind.
type Tab struct {
	ID   TabID
	Kind string
}

// Tui is the terminal session resource: the open tabs, the selection, and
// the session flags the event loop polls. Adding it to the context is what
// asks the process to run a terminal session after command execution.
type Tui struct {
	tabs          []Tab
	selected      int
	nextID        TabID
	quitRequested bool
	textInput     bool
}

// NewTui returns an empty session. The first tab allocated gets id 1.
func NewTui() Tui {
	return Tui{nextID: 1}
}

// Tabs returns the open tabs in display order.
func (t *Tui) Tabs() []Tab {
	return t.tabs
}

// Selected returns the focused tab, if any tab is open.
func (t *Tui) Selected() (Tab, bool) {
	if len(t.tabs) == 0 {
		return Tab{}, false
	}
	return t.tabs[t.selected], true
}

// AddTab opens a tab of the given kind, initializes its state arena entry,
// and focuses it.
func (t *Tui) AddTab(c *framework.Context, kind string) (TabID, error) {
	entry, err := kindFor(c, kind)
	if err != nil {
		return 0, err
	}
	id := t.nextID
	t.nextID++
	entry.reset(c, id)
	t.tabs = append(t.tabs, Tab{ID: id, Kind: kind})
	t.selected = len(t.tabs) - 1
	return id, nil
}

// SetTab swaps the tab's kind in place, keeping its id and position. The old
// kind's state entry is dropped and the new kind's is default-initialized.
func (t *Tui) SetTab(c *framework.Context, id TabID, kind string) error {
	entry, err := kindFor(c, kind)
	if err != nil {
		return err
	}
	for i := range t.tabs {
		if t.tabs[i].ID != id {
			continue
		}
		if old, err := kindFor(c, t.tabs[i].Kind); err == nil {
			old.drop(c, id)
		}
		entry.reset(c, id)
		t.tabs[i].Kind = kind
		return nil
	}
	return fmt.Errorf("%w: id %d", ErrNoTab, id)
}

// CloseTab removes the tab and drops its state entry. Closing an unknown id
// is an error.
func (t *Tui) CloseTab(c *framework.Context, id TabID) error {
	for i := range t.tabs {
		if t.tabs[i].ID != id {
			continue
		}
		if entry, err := kindFor(c, t.tabs[i].Kind); err == nil {
			entry.drop(c, id)
		}
		t.tabs = append(t.tabs[:i], t.tabs[i+1:]...)
		if t.selected >= len(t.tabs) && t.selected > 0 {
			t.selected = len(t.tabs) - 1
		}
		return nil
	}
	return fmt.Errorf("%w: id %d", ErrNoTab, id)
}

// ClearTabs closes every tab.
func (t *Tui) ClearTabs(c *framework.Context) {
	for _, tab := range t.tabs {
		if entry, err := kindFor(c, tab.Kind); err == nil {
			entry.drop(c, tab.ID)
		}
	}
	t.tabs = nil
	t.selected = 0
}

// CycleNext focuses the next tab, wrapping around.
func (t *Tui) CycleNext() {
	if len(t.tabs) == 0 {
		return
	}
	t.selected = (t.selected + 1) % len(t.tabs)
}

// CyclePrev focuses the previous tab, wrapping around.
func (t *Tui) CyclePrev() {
	if len(t.tabs) == 0 {
		return
	}
	t.selected = (t.selected + len(t.tabs) - 1) % len(t.tabs)
}

// RequestQuit marks the session for termination; the event loop exits after
// the current event finishes.
func (t *Tui) RequestQuit() {
	t.quitRequested = true
}

// ShouldQuit reports whether termination was requested.
func (t *Tui) ShouldQuit() bool {
	return t.quitRequested
}

// SetTextInput switches text-input mode. While on, global binds are
// suspended and the focused tab receives every key.
func (t *Tui) SetTextInput(on bool) {
	t.textInput = on
}

// TextInput reports whether the session is in text-input mode.
func (t *Tui) TextInput() bool {
	return t.textInput
}

func kindFor(c *framework.Context, kind string) (kindEntry, error) {
	kinds, err := framework.MustResource[TabKinds](c)
	if err != nil {
		return kindEntry{}, err
	}
	entry, ok := kinds.get(kind)
	if !ok {
		return kindEntry{}, fmt.Errorf("unknown tab kind %q", kind)
	}
	return entry, nil
}

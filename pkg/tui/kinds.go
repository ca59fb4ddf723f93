package tui

import (
	"fmt"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// kindEntry bundles a kind's behavior with type-erased hooks into its state
// arena. reset and drop are captured generically at registration so the tab
// runtime can manage state without knowing its type.
type kindEntry struct {
	impl  TabImpl
	reset func(c *framework.Context, id TabID)
	drop  func(c *framework.Context, id TabID)
}

// TabKinds is the catalog of registered tab kinds, in registration order. The
// TuiPlugin stores one as a resource; other plugins add their kinds to it via
// RegisterKind.
type TabKinds struct {
	order   []string
	entries map[string]kindEntry
}

// NewTabKinds returns an empty catalog.
func NewTabKinds() TabKinds {
	return TabKinds{entries: map[string]kindEntry{}}
}

// Names returns the registered kind names in registration order.
func (k *TabKinds) Names() []string {
	names := make([]string, len(k.order))
	copy(names, k.order)
	return names
}

func (k *TabKinds) register(name string, entry kindEntry) error {
	if _, exists := k.entries[name]; exists {
		return fmt.Errorf("tab kind %q already registered", name)
	}
	k.order = append(k.order, name)
	k.entries[name] = entry
	return nil
}

func (k *TabKinds) get(name string) (kindEntry, bool) {
	entry, ok := k.entries[name]
	return entry, ok
}

// RegisterKind adds a selectable tab kind with state type S to the catalog
// resource. Each live tab of the kind gets its own S value, default-initialized
// when the tab opens and dropped when it closes.
func RegisterKind[S any](c *framework.Context, name string, impl TabImpl) error {
	kinds, err := framework.MustResource[TabKinds](c)
	if err != nil {
		return fmt.Errorf("registering tab kind %q: %w", name, err)
	}
	return kinds.register(name, kindEntry{
		impl:  impl,
		reset: func(c *framework.Context, id TabID) { resetState[S](c, id) },
		drop:  func(c *framework.Context, id TabID) { dropState[S](c, id) },
	})
}

// TabState is the per-kind state arena: one live state value per tab id.
// Created lazily as a resource the first time a tab of the kind is used.
type TabState[S any] struct {
	entries map[TabID]*S
}

func arena[S any](c *framework.Context) *TabState[S] {
	a, ok := framework.GetResource[TabState[S]](c)
	if !ok {
		framework.AddResource(c, TabState[S]{entries: map[TabID]*S{}})
		a, _ = framework.GetResource[TabState[S]](c)
	}
	return a
}

// State returns tab id's state of type S, default-initializing the arena
// entry on first use. The tab runtime creates entries before a tab handles
// anything and drops them with the tab, so a live tab can always reach its
// state through here.
func State[S any](c *framework.Context, id TabID) *S {
	a := arena[S](c)
	s, ok := a.entries[id]
	if !ok {
		s = new(S)
		a.entries[id] = s
	}
	return s
}

func resetState[S any](c *framework.Context, id TabID) {
	a := arena[S](c)
	a.entries[id] = new(S)
}

func dropState[S any](c *framework.Context, id TabID) {
	a := arena[S](c)
	delete(a.entries, id)
}

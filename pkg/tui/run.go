package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// Run drives a terminal session until quit is requested. A Tui resource must
// already be in the context (the tui command adds one); an empty session
// opens with a single chooser tab.
func Run(c *framework.Context) error {
	t, err := framework.MustResource[Tui](c)
	if err != nil {
		return err
	}
	if len(t.Tabs()) == 0 {
		if _, err := t.AddTab(c, ChooserKind); err != nil {
			return err
		}
	}

	p := tea.NewProgram(newModel(c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal session: %w", err)
	}
	return nil
}

package tui

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// TuiPlugin registers the tab-kind catalog and the tui command. Add it before
// any plugin that registers tab kinds.
type TuiPlugin struct{}

func (TuiPlugin) Build(c *framework.Context) error {
	framework.AddResource(c, NewTabKinds())
	if err := RegisterKind[chooserState](c, ChooserKind, chooserTab{}); err != nil {
		return err
	}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Opens an empty TUI session.",
	}
	return c.AddCommand(cmd, processTuiCommand)
}

// processTuiCommand doesn't run the session itself; it marks the process as
// interactive by adding the Tui resource, and main runs the loop after the
// command returns.
func processTuiCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	framework.AddResource(c, NewTui())
	t, _ := framework.GetResource[Tui](c)
	if _, err := t.AddTab(c, ChooserKind); err != nil {
		return framework.CommandResponse{}, err
	}
	return framework.NewResponse("Opening TUI session..."), nil
}

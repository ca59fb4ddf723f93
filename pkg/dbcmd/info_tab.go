package dbcmd

import (
	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

type dbInfoTabState struct{}

// dbInfoTab shows the connection status, read fresh on every render so an
// erase or restore in another tab is reflected immediately.
type dbInfoTab struct{}

func (dbInfoTab) Title() string { return "Database Info" }

func (dbInfoTab) Render(c *framework.Context, id tui.TabID, width, height int) string {
	db, err := c.Connection()
	if err != nil {
		return "No database connection open."
	}
	return dbInfoText(db)
}

func (dbInfoTab) Keybinds() []tui.KeyBind { return nil }

func (dbInfoTab) HandleKey(c *framework.Context, bind string, id tui.TabID) {}

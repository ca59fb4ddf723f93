package training

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

type scheduleTabState struct{}

// scheduleTab lists upcoming sessions with the trainer and client names
// resolved from their rows.
type scheduleTab struct{}

func (scheduleTab) Title() string { return "Schedule" }

func (scheduleTab) Render(c *framework.Context, id tui.TabID, width, height int) string {
	db, err := c.Connection()
	if err != nil {
		return "No database connection open."
	}
	ids, err := db.RowIDs("session")
	if err != nil {
		return err.Error()
	}
	if len(ids) == 0 {
		return "No sessions scheduled."
	}

	var b strings.Builder
	for _, sessionID := range ids {
		session, err := framework.FromTableRow[Session](db, "session", sessionID)
		if err != nil {
			b.WriteString(fmt.Sprintf("session %d: %s\n", sessionID, err))
			continue
		}
		trainerName := rowName(db, "trainer", session.Trainer)
		clientName := rowName(db, "client", session.Client)
		line := fmt.Sprintf("%s  %s with %s", session.Date, clientName, trainerName)
		if session.Charge == nil {
			line += "  (unbilled)"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (scheduleTab) Keybinds() []tui.KeyBind { return nil }

func (scheduleTab) HandleKey(c *framework.Context, bind string, id tui.TabID) {}

func rowName(db *framework.DB, table string, id framework.RowId) string {
	name, err := framework.FieldValue[string](db, table, id, "name")
	if err != nil || name == "" {
		return fmt.Sprintf("%s #%d", table, id)
	}
	return name
}

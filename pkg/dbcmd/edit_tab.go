package dbcmd

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

// editTabState tracks where in the edit flow one tab is: picking a table
// (tableName empty), moving over the cell grid, or editing one text cell.
type editTabState struct {
	tableCursor int
	tableName   string
	row         int
	col         int
	editing     bool
	editField   string
	editBuffer  string
	displayErr  string
}

// editTab walks a table's cells and edits text fields in place. Ctrl+N adds
// a row, Ctrl+D deletes the selected one, Esc steps back out.
type editTab struct{}

var (
	editCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7"))
	editSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	editErrStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	editHeaderStyle   = lipgloss.NewStyle().Bold(true)
)

func (editTab) Title() string { return "Edit Table" }

func (editTab) Keybinds() []tui.KeyBind {
	return []tui.KeyBind{
		tui.NewKeyBind("move_up", "move up", "up"),
		tui.NewKeyBind("move_down", "move down", "down"),
		tui.NewKeyBind("move_left", "move left", "left"),
		tui.NewKeyBind("move_right", "move right", "right"),
		tui.NewKeyBind("select", "select", "enter"),
		tui.NewKeyBind("back", "back", "esc"),
		tui.NewKeyBind("new_row", "new row", "ctrl+n"),
		tui.NewKeyBind("delete_row", "delete row", "ctrl+d"),
	}
}

func (et editTab) HandleKey(c *framework.Context, bind string, id tui.TabID) {
	state := tui.State[editTabState](c, id)
	state.displayErr = ""
	db, err := c.Connection()
	if err != nil {
		state.displayErr = err.Error()
		return
	}

	switch bind {
	case "move_up":
		if state.tableName == "" {
			if state.tableCursor > 0 {
				state.tableCursor--
			}
		} else if state.row > 0 {
			state.row--
		}
	case "move_down":
		if state.tableName == "" {
			if state.tableCursor < len(db.Tables())-1 {
				state.tableCursor++
			}
		} else if state.row < len(et.rowIDs(db, state))-1 {
			state.row++
		}
	case "move_left":
		if state.tableName != "" && state.col > 0 {
			state.col--
		}
	case "move_right":
		if tc := descriptorFor(db, state.tableName); tc != nil && state.col < len(tc.Fields())-1 {
			state.col++
		}
	case "select":
		if state.tableName == "" {
			tables := db.Tables()
			if state.tableCursor < len(tables) {
				state.tableName = tables[state.tableCursor].Name
				state.row, state.col = 0, 0
			}
		} else {
			et.selectCell(c, db, state)
		}
	case "back":
		if state.tableName != "" {
			state.tableName = ""
			state.row, state.col = 0, 0
		}
	case "new_row":
		if state.tableName != "" {
			if _, err := db.NewRow(state.tableName); err != nil {
				state.displayErr = err.Error()
			}
		}
	case "delete_row":
		if state.tableName == "" {
			return
		}
		ids := et.rowIDs(db, state)
		if state.row < len(ids) {
			if err := db.RemoveRow(state.tableName, ids[state.row]); err != nil {
				state.displayErr = err.Error()
			}
			if state.row > 0 && state.row >= len(ids)-1 {
				state.row--
			}
		}
	}
}

// selectCell starts editing the selected cell. Only text fields are
// editable in place.
func (et editTab) selectCell(c *framework.Context, db *framework.DB, state *editTabState) {
	tc := descriptorFor(db, state.tableName)
	if tc == nil {
		return
	}
	fields := tc.Fields()
	if state.col >= len(fields) {
		return
	}
	field := fields[state.col]
	if field.Type != reflect.TypeOf("") {
		state.displayErr = fmt.Sprintf("field %s is not editable text", field.Name)
		return
	}
	ids := et.rowIDs(db, state)
	if state.row >= len(ids) {
		return
	}
	current, err := framework.FieldValue[string](db, state.tableName, ids[state.row], field.Name)
	if err != nil {
		// NULL column on a fresh row; start from empty.
		current = ""
	}
	state.editing = true
	state.editField = field.Name
	state.editBuffer = current
	if session, err := framework.MustResource[tui.Tui](c); err == nil {
		session.SetTextInput(true)
	}
}

func (et editTab) HandleText(c *framework.Context, key string, id tui.TabID) {
	state := tui.State[editTabState](c, id)
	switch key {
	case "esc":
		et.stopEditing(c, state)
	case "enter":
		db, err := c.Connection()
		if err != nil {
			state.displayErr = err.Error()
			et.stopEditing(c, state)
			return
		}
		ids := et.rowIDs(db, state)
		if state.row < len(ids) {
			if err := db.SetField(state.tableName, ids[state.row], state.editField, state.editBuffer); err != nil {
				state.displayErr = err.Error()
			}
		}
		et.stopEditing(c, state)
	case "backspace":
		if state.editBuffer != "" {
			runes := []rune(state.editBuffer)
			state.editBuffer = string(runes[:len(runes)-1])
		}
	default:
		if len([]rune(key)) == 1 {
			state.editBuffer += key
		}
	}
}

func (editTab) stopEditing(c *framework.Context, state *editTabState) {
	state.editing = false
	state.editField = ""
	state.editBuffer = ""
	if session, err := framework.MustResource[tui.Tui](c); err == nil {
		session.SetTextInput(false)
	}
}

func (et editTab) Render(c *framework.Context, id tui.TabID, width, height int) string {
	state := tui.State[editTabState](c, id)
	db, err := c.Connection()
	if err != nil {
		return "No database connection open."
	}

	var b strings.Builder
	if state.tableName == "" {
		tables := db.Tables()
		if len(tables) == 0 {
			return "No tables."
		}
		b.WriteString("Pick a table:\n\n")
		for i, tc := range tables {
			if i == state.tableCursor {
				b.WriteString(editCursorStyle.Render("> " + tc.Name))
			} else {
				b.WriteString("  " + tc.Name)
			}
			b.WriteByte('\n')
		}
		return b.String()
	}

	tc := descriptorFor(db, state.tableName)
	if tc == nil {
		return fmt.Sprintf("table does not exist: %s", state.tableName)
	}
	b.WriteString(et.renderGrid(db, tc, state))

	if state.editing {
		b.WriteString(fmt.Sprintf("\nEditing %s: %s█", state.editField, state.editBuffer))
	} else if state.displayErr != "" {
		b.WriteString("\n" + editErrStyle.Render(state.displayErr))
	}
	return b.String()
}

func (et editTab) renderGrid(db *framework.DB, tc *framework.TableConfig, state *editTabState) string {
	ids, err := db.RowIDs(tc.Name)
	if err != nil {
		return err.Error()
	}
	headers := append([]string{"id"}, tc.Header()...)

	rows := make([][]string, 0, len(ids))
	for _, rowID := range ids {
		cells, err := tc.Record(db, rowID)
		if err != nil {
			// Unloadable row (new rows are all NULL); keep the grid alive.
			rows = append(rows, []string{rowID.String(), "Err"})
			continue
		}
		rows = append(rows, append([]string{rowID.String()}, cells...))
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(editHeaderStyle.Render(pad(h, widths[i])))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	for r, row := range rows {
		for i, cell := range row {
			text := pad(cell, widths[i])
			// Column 0 is the id, not selectable; field columns are offset by one.
			if r == state.row && i == state.col+1 {
				b.WriteString(editSelectedStyle.Render(text))
			} else {
				b.WriteString(text)
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	if len(rows) == 0 {
		b.WriteString(fmt.Sprintf("No entries in table %s.\n", tc.Name))
	}
	return b.String()
}

func (editTab) rowIDs(db *framework.DB, state *editTabState) []framework.RowId {
	if state.tableName == "" {
		return nil
	}
	ids, err := db.RowIDs(state.tableName)
	if err != nil {
		return nil
	}
	return ids
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

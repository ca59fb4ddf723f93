package dbcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

func newEditSession(t *testing.T) (*framework.Context, *tui.Tui, tui.TabID) {
	t.Helper()
	c := newTestContext(t)
	framework.AddResource(c, tui.NewTui())
	session, ok := framework.GetResource[tui.Tui](c)
	require.True(t, ok)
	id, err := session.AddTab(c, "Edit Table")
	require.NoError(t, err)
	return c, session, id
}

func typeText(c *framework.Context, id tui.TabID, text string) {
	et := editTab{}
	for _, r := range text {
		et.HandleText(c, string(r), id)
	}
}

func TestEditTabStartsOnTableList(t *testing.T) {
	c, _, id := newEditSession(t)

	out := editTab{}.Render(c, id, 80, 24)
	assert.Contains(t, out, "Pick a table:")
	assert.Contains(t, out, "client")
	assert.Contains(t, out, "visit")
}

func TestEditTabSelectTable(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}

	et.HandleKey(c, "select", id)

	state := tui.State[editTabState](c, id)
	assert.Equal(t, "client", state.tableName)
}

func TestEditTabCursorMovesOverTables(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}

	et.HandleKey(c, "move_down", id)
	et.HandleKey(c, "select", id)

	state := tui.State[editTabState](c, id)
	assert.Equal(t, "visit", state.tableName)
}

func TestEditTabBackReturnsToList(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)

	et.HandleKey(c, "back", id)

	state := tui.State[editTabState](c, id)
	assert.Equal(t, "", state.tableName)
	assert.Contains(t, et.Render(c, id, 80, 24), "Pick a table:")
}

func TestEditTabNewAndDeleteRow(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)

	et.HandleKey(c, "new_row", id)
	et.HandleKey(c, "new_row", id)

	db, err := c.Connection()
	require.NoError(t, err)
	ids, err := db.RowIDs("client")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	et.HandleKey(c, "delete_row", id)
	ids, err = db.RowIDs("client")
	require.NoError(t, err)
	assert.Equal(t, []framework.RowId{2}, ids)
}

func TestEditTabGridSurvivesFreshRow(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)

	et.HandleKey(c, "new_row", id)

	out := et.Render(c, id, 80, 24)
	assert.Contains(t, out, "Err", "all-NULL row renders as a marker")
	assert.Contains(t, out, "name", "grid header still renders")
}

func TestEditTabTextCellEdit(t *testing.T) {
	c, session, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)
	et.HandleKey(c, "new_row", id)

	et.HandleKey(c, "select", id)
	require.True(t, session.TextInput(), "selecting a text cell enters text-input mode")

	typeText(c, id, "Wes")
	et.HandleText(c, "backspace", id)
	typeText(c, id, "ndy")
	et.HandleText(c, "enter", id)

	assert.False(t, session.TextInput())

	db, err := c.Connection()
	require.NoError(t, err)
	name, err := framework.FieldValue[string](db, "client", 1, "name")
	require.NoError(t, err)
	assert.Equal(t, "Wendy", name)
}

func TestEditTabEscCancelsEdit(t *testing.T) {
	c, session, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)
	et.HandleKey(c, "new_row", id)
	et.HandleKey(c, "select", id)
	require.True(t, session.TextInput())

	typeText(c, id, "discarded")
	et.HandleText(c, "esc", id)

	assert.False(t, session.TextInput())
	state := tui.State[editTabState](c, id)
	assert.False(t, state.editing)
	assert.Empty(t, state.editBuffer)
}

func TestEditTabNonTextFieldRejected(t *testing.T) {
	c, session, id := newEditSession(t)
	et := editTab{}
	// visit's fields are a date and a reference; neither is editable text.
	et.HandleKey(c, "move_down", id)
	et.HandleKey(c, "select", id)
	et.HandleKey(c, "new_row", id)

	et.HandleKey(c, "select", id)

	assert.False(t, session.TextInput())
	state := tui.State[editTabState](c, id)
	assert.Contains(t, state.displayErr, "not editable text")
}

func TestEditTabGridShowsValues(t *testing.T) {
	c, _, id := newEditSession(t)
	et := editTab{}
	et.HandleKey(c, "select", id)
	et.HandleKey(c, "new_row", id)

	db, err := c.Connection()
	require.NoError(t, err)
	require.NoError(t, db.SetField("client", 1, "name", "Ravi"))

	out := et.Render(c, id, 80, 24)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Ravi")
}

func TestDbInfoTabRendersStatus(t *testing.T) {
	c, _, _ := newEditSession(t)
	session, _ := framework.GetResource[tui.Tui](c)
	id, err := session.AddTab(c, "Database Info")
	require.NoError(t, err)

	out := dbInfoTab{}.Render(c, id, 80, 24)
	assert.Contains(t, out, "Database connection open.")
}

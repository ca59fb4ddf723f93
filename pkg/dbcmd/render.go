package dbcmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// renderTable renders the given rows as a bordered text table, id column
// first, one row per id in order. A row that cannot be loaded (a freshly
// inserted row has NULL in every column) renders as an error marker so the
// rest of the table still lists.
func renderTable(db *framework.DB, tc *framework.TableConfig, ids []framework.RowId) (string, error) {
	headers := append([]string{"id"}, tc.Header()...)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, id := range ids {
		cells, err := tc.Record(db, id)
		if err != nil {
			tbl.Row(id.String(), "Err")
			continue
		}
		tbl.Row(append([]string{id.String()}, cells...)...)
	}
	return tbl.String(), nil
}

// Package dbcmd is the plugin for generic row and table editing: the new,
// remove, set, and list commands, the db maintenance command group, and the
// tab kinds for inspecting and editing tables interactively.
package dbcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

// DbCommandsPlugin adds the database editing commands. When the tab-kind
// catalog is present (TuiPlugin added earlier), it also registers the
// "Database Info" and "Edit Table" tab kinds.
type DbCommandsPlugin struct{}

func (DbCommandsPlugin) Build(c *framework.Context) error {
	newCmd := &cobra.Command{Use: "new", Short: "Add a new row to a table"}
	newCmd.Flags().String("table", "", "Name of the table to add a row in")
	_ = newCmd.MarkFlagRequired("table")
	if err := c.AddCommand(newCmd, processNewCommand); err != nil {
		return err
	}

	removeCmd := &cobra.Command{Use: "remove", Aliases: []string{"rm"}, Short: "Removes a row from a table"}
	removeCmd.Flags().String("table", "", "Name of the table to remove a row from")
	removeCmd.Flags().Int64("row-id", 0, "Row ID to remove")
	_ = removeCmd.MarkFlagRequired("table")
	_ = removeCmd.MarkFlagRequired("row-id")
	if err := c.AddCommand(removeCmd, processRemoveCommand); err != nil {
		return err
	}

	setCmd := &cobra.Command{Use: "set", Short: "Sets a field in the given table and row."}
	setCmd.Flags().String("table", "", "Name of the table to modify")
	setCmd.Flags().Int64("row-id", 0, "Row ID to modify")
	setCmd.Flags().String("field", "", "Name of the field to modify")
	setCmd.Flags().String("value", "", "Value to set the field to")
	_ = setCmd.MarkFlagRequired("table")
	_ = setCmd.MarkFlagRequired("row-id")
	_ = setCmd.MarkFlagRequired("field")
	_ = setCmd.MarkFlagRequired("value")
	if err := c.AddCommand(setCmd, processSetCommand); err != nil {
		return err
	}

	listCmd := &cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "Lists the rows of a table"}
	listCmd.Flags().String("table", "", "Name of the table to list rows from")
	_ = listCmd.MarkFlagRequired("table")
	if err := c.AddCommand(listCmd, processListCommand); err != nil {
		return err
	}

	dbCmd := &cobra.Command{Use: "db", Short: "View and update database configuration"}
	dbCmd.AddCommand(&cobra.Command{Use: "info", Short: "Prints information about the database"})
	dbCmd.AddCommand(&cobra.Command{Use: "erase", Short: "Erases the database"})
	backupCmd := &cobra.Command{Use: "backup", Short: "Copies the database to a new file"}
	backupCmd.Flags().String("out-file", "", "File path to copy the database to (will be overwritten)")
	_ = backupCmd.MarkFlagRequired("out-file")
	dbCmd.AddCommand(backupCmd)
	restoreCmd := &cobra.Command{Use: "restore", Short: "Restores the database from a given file"}
	restoreCmd.Flags().String("file", "", "File path to restore the database from")
	_ = restoreCmd.MarkFlagRequired("file")
	dbCmd.AddCommand(restoreCmd)
	if err := c.AddCommand(dbCmd, processDbCommand); err != nil {
		return err
	}

	if framework.HasResource[tui.TabKinds](c) {
		if err := tui.RegisterKind[dbInfoTabState](c, "Database Info", dbInfoTab{}); err != nil {
			return err
		}
		if err := tui.RegisterKind[editTabState](c, "Edit Table", editTab{}); err != nil {
			return err
		}
	}
	return nil
}

func processNewCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	table, _ := cmd.Flags().GetString("table")
	id, err := db.NewRow(table)
	if err != nil {
		return framework.CommandResponse{}, err
	}
	return framework.NewResponse(fmt.Sprintf("Inserted new row (id: %d) in table %s.", id, table)), nil
}

func processRemoveCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	table, _ := cmd.Flags().GetString("table")
	rowID, _ := cmd.Flags().GetInt64("row-id")
	if err := db.RemoveRow(table, framework.RowId(rowID)); err != nil {
		return framework.CommandResponse{}, err
	}
	return framework.CommandResponse{}, nil
}

func processSetCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	table, _ := cmd.Flags().GetString("table")
	rowID, _ := cmd.Flags().GetInt64("row-id")
	field, _ := cmd.Flags().GetString("field")
	value, _ := cmd.Flags().GetString("value")
	if err := db.SetField(table, framework.RowId(rowID), field, value); err != nil {
		return framework.CommandResponse{}, err
	}
	return framework.CommandResponse{}, nil
}

func processListCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	table, _ := cmd.Flags().GetString("table")

	ids, err := db.RowIDs(table)
	if err != nil {
		return framework.CommandResponse{}, err
	}
	if len(ids) == 0 {
		return framework.NewResponse(fmt.Sprintf("No entries in table %s.", table)), nil
	}

	tc := descriptorFor(db, table)
	if tc == nil {
		return framework.CommandResponse{}, fmt.Errorf("%w: table does not exist: %s", framework.ErrDatabase, table)
	}
	text, err := renderTable(db, tc, ids)
	if err != nil {
		return framework.CommandResponse{}, err
	}
	return framework.NewResponse(text), nil
}

func processDbCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	switch cmd.Name() {
	case "info":
		return framework.NewResponse(dbInfoText(db)), nil
	case "erase":
		if err := db.DeleteDatabase(); err != nil {
			return framework.CommandResponse{}, err
		}
		return framework.CommandResponse{}, nil
	case "backup":
		outFile, _ := cmd.Flags().GetString("out-file")
		if err := db.Backup(outFile); err != nil {
			return framework.CommandResponse{}, err
		}
		return framework.CommandResponse{}, nil
	case "restore":
		file, _ := cmd.Flags().GetString("file")
		if err := db.Restore(file); err != nil {
			return framework.CommandResponse{}, err
		}
		return framework.CommandResponse{}, nil
	}
	return framework.CommandResponse{}, fmt.Errorf("%w: subcommand not recognized", framework.ErrUnknownCommand)
}

func descriptorFor(db *framework.DB, table string) *framework.TableConfig {
	for _, tc := range db.Tables() {
		if tc.Name == table {
			return tc
		}
	}
	return nil
}

func dbInfoText(db *framework.DB) string {
	if !db.IsOpen() {
		return "No database connection open."
	}
	text := "Database connection open.\n"
	if path, ok := db.Path(); ok {
		text += fmt.Sprintf("Database path: %q", path)
	} else {
		text += "No database path (in-memory connection)"
	}
	return text
}

package framework

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/coach/internal/paths"
)

// RowId uniquely identifies a row within one table. Identity generation is
// the backing store's monotonic rowid: the first row in a fresh table is 1,
// and ids are never reused after deletion within a connection's lifetime.
type RowId int64

func (id RowId) String() string {
	return fmt.Sprintf("%d", id)
}

// DB is a thin CRUD wrapper over the SQLite connection, parametrized by table
// name and row identity. It is stored as a Context resource at Startup and
// exclusively owned there for the life of the process.
//
// Table and field names are interpolated directly into statement text; values
// are always bound parameters. This is a closed-world assumption, not a
// hardened boundary: names only ever originate from registered table
// descriptors, never from external input.
type DB struct {
	conn   *sql.DB
	path   string // empty for an in-memory connection
	tables []*TableConfig
}

// openDefaultDB opens (creating if needed) the database file under dataDir,
// or under the platform data directory when dataDir is empty, and runs every
// table setup.
func openDefaultDB(dataDir string, tables []*TableConfig) (DB, error) {
	if dataDir == "" {
		resolved, err := paths.DefaultDataDir()
		if err != nil {
			return DB{}, fmt.Errorf("%w: resolve data dir: %s", ErrFile, err)
		}
		dataDir = resolved
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return DB{}, fmt.Errorf("%w: create data dir: %s", ErrFile, err)
	}

	dbPath := filepath.Join(dataDir, "coach.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return DB{}, fmt.Errorf("%w: open %s: %s", ErrDatabase, dbPath, err)
	}
	db := DB{conn: conn, path: dbPath, tables: tables}
	if err := db.setup(); err != nil {
		conn.Close()
		return DB{}, err
	}
	return db, nil
}

// openMemoryDB opens an in-memory database and runs every table setup.
func openMemoryDB(tables []*TableConfig) (DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return DB{}, fmt.Errorf("%w: open in-memory: %s", ErrDatabase, err)
	}
	// database/sql pools connections; a second connection to ":memory:" would
	// see a different database, so pin the pool to one.
	conn.SetMaxOpenConns(1)
	db := DB{conn: conn, tables: tables}
	if err := db.setup(); err != nil {
		conn.Close()
		return DB{}, err
	}
	return db, nil
}

func (db *DB) setup() error {
	for _, tc := range db.tables {
		if err := tc.Setup(db); err != nil {
			return fmt.Errorf("setting up table %s: %w", tc.Name, err)
		}
	}
	return nil
}

// IsOpen reports whether the connection is open.
func (db *DB) IsOpen() bool {
	return db.conn != nil
}

// Path returns the database file path, or false for an in-memory connection.
func (db *DB) Path() (string, bool) {
	return db.path, db.path != ""
}

// Tables returns the table descriptors this connection was opened with.
func (db *DB) Tables() []*TableConfig {
	return db.tables
}

func (db *DB) connection() (*sql.DB, error) {
	if db.conn == nil {
		return nil, ErrNoConnection
	}
	return db.conn, nil
}

// NewRow inserts a default-valued row into table and returns its generated
// identity.
func (db *DB) NewRow(table string) (RowId, error) {
	conn, err := db.connection()
	if err != nil {
		return 0, err
	}
	res, err := conn.Exec(fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table))
	if err != nil {
		return 0, fmt.Errorf("%w: insert into %s: %s", ErrDatabase, table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %s", ErrDatabase, err)
	}
	return RowId(id), nil
}

// SetField updates one column by name in the given row. The value is a bound
// parameter.
func (db *DB) SetField(table string, id RowId, field string, value any) error {
	conn, err := db.connection()
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, field)
	if _, err := conn.Exec(stmt, value, int64(id)); err != nil {
		return fmt.Errorf("%w: set %s.%s: %s", ErrDatabase, table, field, err)
	}
	return nil
}

// GetField reads one column from the given row into dest (a pointer as for
// sql.Row.Scan). A missing row or a type mismatch is a database error.
func (db *DB) GetField(table string, id RowId, field string, dest any) error {
	conn, err := db.connection()
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", field, table)
	if err := conn.QueryRow(stmt, int64(id)).Scan(dest); err != nil {
		return fmt.Errorf("%w: get %s.%s (row %d): %s", ErrDatabase, table, field, id, err)
	}
	return nil
}

// FieldValue reads one column from the given row as type F.
func FieldValue[F any](db *DB, table string, id RowId, field string) (F, error) {
	var value F
	err := db.GetField(table, id, field, &value)
	return value, err
}

// RemoveRow deletes the given row. Deleting a row that does not exist is a
// successful no-op: zero rows affected is not failure.
func (db *DB) RemoveRow(table string, id RowId) error {
	conn, err := db.connection()
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	if _, err := conn.Exec(stmt, int64(id)); err != nil {
		return fmt.Errorf("%w: delete from %s: %s", ErrDatabase, table, err)
	}
	return nil
}

// RowIDs returns every row identity in table, in insertion order.
func (db *DB) RowIDs(table string) ([]RowId, error) {
	conn, err := db.connection()
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(fmt.Sprintf("SELECT id FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %s", ErrDatabase, table, err)
	}
	defer rows.Close()

	var ids []RowId
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan %s id: %s", ErrDatabase, table, err)
		}
		ids = append(ids, RowId(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %s", ErrDatabase, table, err)
	}
	return ids, nil
}

// DeleteDatabase closes the connection and removes the backing file. For an
// in-memory connection it only closes. Requires an open connection.
func (db *DB) DeleteDatabase() error {
	conn, err := db.connection()
	if err != nil {
		return err
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("%w: close: %s", ErrDatabase, err)
	}
	db.conn = nil
	if db.path != "" {
		if err := os.Remove(db.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %s", ErrFile, db.path, err)
		}
		db.path = ""
	}
	return nil
}

// Backup copies the database file to dst, overwriting it. Only file-backed
// connections can be backed up.
func (db *DB) Backup(dst string) error {
	if _, err := db.connection(); err != nil {
		return err
	}
	if db.path == "" {
		return fmt.Errorf("%w: cannot back up an in-memory database", ErrFile)
	}
	data, err := os.ReadFile(db.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %s", ErrFile, db.path, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %s", ErrFile, dst, err)
	}
	return nil
}

// Restore replaces the database file with src and reopens the connection
// against it, re-running every table setup. Only file-backed connections can
// be restored.
func (db *DB) Restore(src string) error {
	if _, err := db.connection(); err != nil {
		return err
	}
	if db.path == "" {
		return fmt.Errorf("%w: cannot restore an in-memory database", ErrFile)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: read %s: %s", ErrFile, src, err)
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("%w: close: %s", ErrDatabase, err)
	}
	db.conn = nil
	if err := os.WriteFile(db.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %s", ErrFile, db.path, err)
	}
	conn, err := sql.Open("sqlite", db.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %s", ErrDatabase, db.path, err)
	}
	db.conn = conn
	return db.setup()
}

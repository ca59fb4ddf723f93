package framework

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// column binds one exported record field to its SQL column and marshaller.
type column struct {
	name   string
	field  int // index into the record struct
	goType reflect.Type
	ft     FieldType
}

// FieldSpec describes one column of a table descriptor: its SQL column name
// and the Go type of the record field behind it.
type FieldSpec struct {
	Name string
	Type reflect.Type
}

// TableConfig is a table descriptor: everything the connection wrapper and
// the terminal UI need to know about one table, derived once from a record
// struct by reflection. Immutable after construction.
type TableConfig struct {
	Name    string
	record  reflect.Type
	columns []column
}

var (
	columnsMu    sync.Mutex
	columnsCache = map[reflect.Type][]column{}
)

// NewTableConfig builds the descriptor for record type T backing the named
// table. Column names come from the `db` struct tag, defaulting to
// lower_snake of the field name. A field whose type has no registered
// marshaller is a programming error and panics.
func NewTableConfig[T any](name string) *TableConfig {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return &TableConfig{Name: name, record: t, columns: columnsFor(t)}
}

func columnsFor(t reflect.Type) []column {
	columnsMu.Lock()
	defer columnsMu.Unlock()
	if cols, ok := columnsCache[t]; ok {
		return cols
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("table record %s is not a struct", t))
	}
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		colName := f.Tag.Get("db")
		if colName == "" {
			colName = snakeCase(f.Name)
		}
		ft, err := lookupFieldType(f.Type)
		if err != nil {
			panic(fmt.Sprintf("table record %s: field %s: %v", t, f.Name, err))
		}
		cols = append(cols, column{name: colName, field: i, goType: f.Type, ft: ft})
	}
	columnsCache[t] = cols
	return cols
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Setup creates the table if it does not exist, with an INTEGER PRIMARY KEY
// id column followed by one column per record field.
func (tc *TableConfig) Setup(db *DB) error {
	conn, err := db.connection()
	if err != nil {
		return err
	}
	defs := []string{"id INTEGER PRIMARY KEY"}
	for _, col := range tc.columns {
		defs = append(defs, fmt.Sprintf("%s %s", col.name, col.ft.sqlType))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tc.Name, strings.Join(defs, ", "))
	if _, err := conn.Exec(stmt); err != nil {
		return fmt.Errorf("%w: create table %s: %s", ErrDatabase, tc.Name, err)
	}
	return nil
}

// Header returns the column names, without the id column.
func (tc *TableConfig) Header() []string {
	names := make([]string, len(tc.columns))
	for i, col := range tc.columns {
		names[i] = col.name
	}
	return names
}

// Fields returns the column name and Go type of every record field.
func (tc *TableConfig) Fields() []FieldSpec {
	specs := make([]FieldSpec, len(tc.columns))
	for i, col := range tc.columns {
		specs[i] = FieldSpec{Name: col.name, Type: col.goType}
	}
	return specs
}

// Record reads the given row and renders each field as a display string, in
// column order.
func (tc *TableConfig) Record(db *DB, id RowId) ([]string, error) {
	cells := make([]string, len(tc.columns))
	for i, col := range tc.columns {
		v, err := col.ft.load(db, tc.Name, id, col.name)
		if err != nil {
			return nil, err
		}
		cells[i] = col.ft.display(v)
	}
	return cells, nil
}

func (tc *TableConfig) loadInto(db *DB, id RowId, dest reflect.Value) error {
	for _, col := range tc.columns {
		v, err := col.ft.load(db, tc.Name, id, col.name)
		if err != nil {
			return err
		}
		dest.Field(col.field).Set(v)
	}
	return nil
}

func (tc *TableConfig) storeFrom(db *DB, id RowId, src reflect.Value) error {
	for _, col := range tc.columns {
		value, err := col.ft.store(src.Field(col.field))
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %s", ErrDatabase, tc.Name, col.name, err)
		}
		if err := db.SetField(tc.Name, id, col.name, value); err != nil {
			return err
		}
	}
	return nil
}

// FromTableRow reads the given row of table into a fresh record of type T.
func FromTableRow[T any](db *DB, table string, id RowId) (T, error) {
	var record T
	t := reflect.TypeOf(record)
	tc := &TableConfig{Name: table, record: t, columns: columnsFor(t)}
	if err := tc.loadInto(db, id, reflect.ValueOf(&record).Elem()); err != nil {
		return record, err
	}
	return record, nil
}

// ToTableRow writes every field of record into the given row of table.
func ToTableRow[T any](db *DB, table string, id RowId, record T) error {
	t := reflect.TypeOf(record)
	tc := &TableConfig{Name: table, record: t, columns: columnsFor(t)}
	return tc.storeFrom(db, id, reflect.ValueOf(record))
}

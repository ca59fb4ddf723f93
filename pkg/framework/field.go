package framework

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day without a time component, stored as TEXT in
// ISO-8601 form.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// Today returns the current local date.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO-8601 date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// FieldType maps one Go record-field type onto SQLite storage. sqlType is
// the column type used at table setup; store converts a field value into a
// bindable parameter; load reads the column back into a field value; display
// renders it for tables and the terminal UI.
type FieldType struct {
	sqlType string
	store   func(v reflect.Value) (any, error)
	load    func(db *DB, table string, id RowId, field string) (reflect.Value, error)
	display func(v reflect.Value) string
}

// fieldTypes is the marshaller registry, keyed by the record field's Go type.
// Populated at init; read-only afterwards.
var fieldTypes = map[reflect.Type]FieldType{}

func registerFieldType(t reflect.Type, ft FieldType) {
	fieldTypes[t] = ft
}

func lookupFieldType(t reflect.Type) (FieldType, error) {
	ft, ok := fieldTypes[t]
	if !ok {
		return FieldType{}, fmt.Errorf("%w: no field marshaller for type %s", ErrDatabase, t)
	}
	return ft, nil
}

func scalarField[F any](sqlType string, display func(F) string) FieldType {
	return FieldType{
		sqlType: sqlType,
		store: func(v reflect.Value) (any, error) {
			return v.Interface(), nil
		},
		load: func(db *DB, table string, id RowId, field string) (reflect.Value, error) {
			value, err := FieldValue[F](db, table, id, field)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(value), nil
		},
		display: func(v reflect.Value) string {
			return display(v.Interface().(F))
		},
	}
}

func init() {
	registerFieldType(reflect.TypeOf(""), scalarField("TEXT", func(s string) string { return s }))
	registerFieldType(reflect.TypeOf(int(0)), scalarField("INTEGER", func(n int) string { return strconv.Itoa(n) }))
	registerFieldType(reflect.TypeOf(int32(0)), scalarField("INTEGER", func(n int32) string { return strconv.FormatInt(int64(n), 10) }))
	registerFieldType(reflect.TypeOf(int64(0)), scalarField("INTEGER", func(n int64) string { return strconv.FormatInt(n, 10) }))
	registerFieldType(reflect.TypeOf(false), scalarField("INTEGER", strconv.FormatBool))
	registerFieldType(reflect.TypeOf(RowId(0)), FieldType{
		sqlType: "INTEGER",
		store: func(v reflect.Value) (any, error) {
			return v.Int(), nil
		},
		load: func(db *DB, table string, id RowId, field string) (reflect.Value, error) {
			value, err := FieldValue[int64](db, table, id, field)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(RowId(value)), nil
		},
		display: func(v reflect.Value) string {
			return strconv.FormatInt(v.Int(), 10)
		},
	})
	registerFieldType(reflect.TypeOf((*RowId)(nil)), optionalRowIdField())
	registerFieldType(reflect.TypeOf([]RowId(nil)), rowIdListField())
	registerFieldType(reflect.TypeOf(Date{}), FieldType{
		sqlType: "TEXT",
		store: func(v reflect.Value) (any, error) {
			return v.Interface().(Date).String(), nil
		},
		load: func(db *DB, table string, id RowId, field string) (reflect.Value, error) {
			text, err := FieldValue[string](db, table, id, field)
			if err != nil {
				return reflect.Value{}, err
			}
			d, err := ParseDate(text)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %s.%s: %s", ErrDatabase, table, field, err)
			}
			return reflect.ValueOf(d), nil
		},
		display: func(v reflect.Value) string {
			return v.Interface().(Date).String()
		},
	})
}

// optionalRowIdField stores *RowId as a plain INTEGER. nil is stored as 0; a
// missing, zero, or undecodable column loads back as nil rather than failing,
// so an unset reference never blocks reading the rest of the row.
func optionalRowIdField() FieldType {
	return FieldType{
		sqlType: "INTEGER",
		store: func(v reflect.Value) (any, error) {
			if v.IsNil() {
				return int64(0), nil
			}
			return int64(v.Elem().Int()), nil
		},
		load: func(db *DB, table string, id RowId, field string) (reflect.Value, error) {
			value, err := FieldValue[int64](db, table, id, field)
			if err != nil || value == 0 {
				return reflect.Zero(reflect.TypeOf((*RowId)(nil))), nil
			}
			ref := RowId(value)
			return reflect.ValueOf(&ref), nil
		},
		display: func(v reflect.Value) string {
			if v.IsNil() {
				return ""
			}
			return strconv.FormatInt(v.Elem().Int(), 10)
		},
	}
}

// rowIdListField stores []RowId as comma-joined TEXT. An empty column loads
// as an empty slice; a non-numeric element is an error, never a panic.
func rowIdListField() FieldType {
	return FieldType{
		sqlType: "TEXT",
		store: func(v reflect.Value) (any, error) {
			parts := make([]string, v.Len())
			for i := 0; i < v.Len(); i++ {
				parts[i] = strconv.FormatInt(v.Index(i).Int(), 10)
			}
			return strings.Join(parts, ","), nil
		},
		load: func(db *DB, table string, id RowId, field string) (reflect.Value, error) {
			text, err := FieldValue[string](db, table, id, field)
			if err != nil {
				return reflect.Value{}, err
			}
			ids, err := parseRowIdList(text)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %s.%s: %s", ErrDatabase, table, field, err)
			}
			return reflect.ValueOf(ids), nil
		},
		display: func(v reflect.Value) string {
			parts := make([]string, v.Len())
			for i := 0; i < v.Len(); i++ {
				parts[i] = strconv.FormatInt(v.Index(i).Int(), 10)
			}
			return strings.Join(parts, ",")
		},
	}
}

func parseRowIdList(text string) ([]RowId, error) {
	ids := []RowId{}
	if text == "" {
		return ids, nil
	}
	for _, part := range strings.Split(text, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing row id %q: %w", part, err)
		}
		ids = append(ids, RowId(n))
	}
	return ids, nil
}

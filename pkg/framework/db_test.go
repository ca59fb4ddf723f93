package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personRecord struct {
	Name        string
	CompanyName string
	Age         int
}

func newTestDB(t *testing.T, tables ...*TableConfig) *DB {
	t.Helper()
	c := New()
	c.InMemoryDB(true)
	for _, tc := range tables {
		require.NoError(t, c.AddTable(tc))
	}
	require.NoError(t, c.Startup())
	db, err := c.Connection()
	require.NoError(t, err)
	return db
}

func TestNewRowFirstIdIsOne(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))

	id, err := db.NewRow("person")
	require.NoError(t, err)
	assert.Equal(t, RowId(1), id)

	second, err := db.NewRow("person")
	require.NoError(t, err)
	assert.Equal(t, RowId(2), second)
}

func TestSetGetFieldRoundTrip(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))
	id, err := db.NewRow("person")
	require.NoError(t, err)

	require.NoError(t, db.SetField("person", id, "name", "Mira"))
	require.NoError(t, db.SetField("person", id, "age", 34))

	name, err := FieldValue[string](db, "person", id, "name")
	require.NoError(t, err)
	assert.Equal(t, "Mira", name)

	age, err := FieldValue[int](db, "person", id, "age")
	require.NoError(t, err)
	assert.Equal(t, 34, age)
}

func TestGetFieldMissingRow(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))

	_, err := FieldValue[string](db, "person", 99, "name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabase)
}

func TestRemoveRow(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))
	id, err := db.NewRow("person")
	require.NoError(t, err)

	require.NoError(t, db.RemoveRow("person", id))

	ids, err := db.RowIDs("person")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Removing a row that is already gone is not an error.
	assert.NoError(t, db.RemoveRow("person", id))
}

func TestRowIDsOrdered(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))
	for i := 0; i < 3; i++ {
		_, err := db.NewRow("person")
		require.NoError(t, err)
	}

	ids, err := db.RowIDs("person")
	require.NoError(t, err)
	assert.Equal(t, []RowId{1, 2, 3}, ids)
}

func TestDeleteDatabase(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))
	require.True(t, db.IsOpen())

	require.NoError(t, db.DeleteDatabase())
	assert.False(t, db.IsOpen())

	// Every operation on a deleted database reports the missing connection.
	_, err := db.NewRow("person")
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.ErrorIs(t, db.SetField("person", 1, "name", "x"), ErrNoConnection)
	_, err = db.RowIDs("person")
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.ErrorIs(t, db.DeleteDatabase(), ErrNoConnection)
}

func TestFileBackedDatabase(t *testing.T) {
	dir := t.TempDir()
	c := New()
	c.SetDataDir(dir)
	require.NoError(t, c.AddTable(NewTableConfig[personRecord]("person")))
	require.NoError(t, c.Startup())

	db, err := c.Connection()
	require.NoError(t, err)

	path, ok := db.Path()
	require.True(t, ok)
	assert.Contains(t, path, dir)

	id, err := db.NewRow("person")
	require.NoError(t, err)
	require.NoError(t, db.SetField("person", id, "name", "persisted"))

	require.NoError(t, db.DeleteDatabase())
	_, ok = db.Path()
	assert.False(t, ok)
}

func TestInMemoryPathAbsent(t *testing.T) {
	db := newTestDB(t, NewTableConfig[personRecord]("person"))

	_, ok := db.Path()
	assert.False(t, ok)
}

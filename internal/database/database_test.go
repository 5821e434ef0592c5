package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/config"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/nlq"
)

// Mock DialectHandler implementation
type mockDialectHandler struct {
	createCloudSQLPoolFn func(cfg config.DatabaseConfig) (*sql.DB, error)
	createStandardPoolFn func(cfg config.DatabaseConfig) (*sql.DB, error)
	listTablesFn         func(ctx context.Context, db *DB) ([]string, error)
	listColumnsFn        func(ctx context.Context, db *DB, tableName string) ([]nlq.ColumnDescriptor, error)
}

func (m *mockDialectHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if m.createCloudSQLPoolFn != nil {
		return m.createCloudSQLPoolFn(cfg)
	}
	mockDb, _, _ := sqlmock.New()
	return mockDb, nil
}

func (m *mockDialectHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	if m.createStandardPoolFn != nil {
		return m.createStandardPoolFn(cfg)
	}
	mockDb, _, _ := sqlmock.New()
	return mockDb, nil
}

func (m *mockDialectHandler) QuoteIdentifier(name string) string { return fmt.Sprintf(`"%s"`, name) }

func (m *mockDialectHandler) ListTables(ctx context.Context, db *DB) ([]string, error) {
	if m.listTablesFn != nil {
		return m.listTablesFn(ctx, db)
	}
	return []string{"trips"}, nil
}

func (m *mockDialectHandler) ListColumns(ctx context.Context, db *DB, tableName string) ([]nlq.ColumnDescriptor, error) {
	if m.listColumnsFn != nil {
		return m.listColumnsFn(ctx, db, tableName)
	}
	return []nlq.ColumnDescriptor{{Table: tableName, Column: "trip_id", DataType: "integer"}}, nil
}

func (m *mockDialectHandler) Placeholder(n int) string                  { return fmt.Sprintf("$%d", n) }
func (m *mockDialectHandler) MinutesBetween(start, end string) string   { return end + " - " + start }
func (m *mockDialectHandler) DateOf(expr string) string                 { return "DATE(" + expr + ")" }
func (m *mockDialectHandler) Round(expr string, places int) string      { return "ROUND(" + expr + ")" }
func (m *mockDialectHandler) ContainsFold(col, placeholder string) string {
	return col + " ILIKE " + placeholder
}
func (m *mockDialectHandler) LimitOne() string { return "LIMIT 1" }

func TestDialectHandlerRegistry(t *testing.T) {
	handler := &mockDialectHandler{}
	RegisterDialectHandler("mockdialect", handler)

	got, err := GetDialectHandler("mockdialect")
	require.NoError(t, err)
	assert.Equal(t, handler, got)

	_, err = GetDialectHandler("nosuchdialect")
	assert.Error(t, err)
}

func TestNewPingFailure(t *testing.T) {
	mockDb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("refused"))

	RegisterDialectHandler("mockping", &mockDialectHandler{
		createStandardPoolFn: func(cfg config.DatabaseConfig) (*sql.DB, error) {
			return mockDb, nil
		},
	})

	_, err = New(config.DatabaseConfig{Dialect: "mockping"})
	assert.Error(t, err)
}

func TestNewConnectsAndPings(t *testing.T) {
	mockDb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	RegisterDialectHandler("mockok", &mockDialectHandler{
		createStandardPoolFn: func(cfg config.DatabaseConfig) (*sql.DB, error) {
			return mockDb, nil
		},
	})

	db, err := New(config.DatabaseConfig{Dialect: "mockok"})
	require.NoError(t, err)
	assert.NotNil(t, db.Dialect())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSchema(t *testing.T) {
	handler := &mockDialectHandler{
		listTablesFn: func(ctx context.Context, db *DB) ([]string, error) {
			return []string{"trips", "stations"}, nil
		},
		listColumnsFn: func(ctx context.Context, db *DB, tableName string) ([]nlq.ColumnDescriptor, error) {
			return []nlq.ColumnDescriptor{
				{Table: tableName, Column: "id", DataType: "integer"},
				{Table: tableName, Column: "name", DataType: "text", Nullable: true},
			}, nil
		},
	}
	db := &DB{Handler: handler}

	snapshot, err := db.GetSchema(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 2)
	assert.Equal(t, "trips", snapshot.Tables[0].Name)
	assert.Equal(t, "stations", snapshot.Tables[1].Name)
	assert.Len(t, snapshot.Tables[0].Columns, 2)
	assert.True(t, snapshot.Tables[0].Columns[1].Nullable)
}

func TestGetSchemaListTablesError(t *testing.T) {
	db := &DB{Handler: &mockDialectHandler{
		listTablesFn: func(ctx context.Context, db *DB) ([]string, error) {
			return nil, errors.New("permission denied")
		},
	}}

	_, err := db.GetSchema(context.Background())
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS trip_count FROM trips WHERE trips\.rider_gender = \$1`).
		WithArgs("female").
		WillReturnRows(sqlmock.NewRows([]string{"trip_count"}).AddRow(int64(42)))

	db := &DB{Pool: mockDb, Handler: &mockDialectHandler{}}
	rows, err := db.Execute(context.Background(),
		"SELECT COUNT(*) AS trip_count FROM trips WHERE trips.rider_gender = $1",
		[]any{"female"})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0]["trip_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Drivers that hand back []byte must not leak raw bytes into results.
func TestExecuteConvertsBytes(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close()

	mock.ExpectQuery("SELECT station_name FROM stations").
		WillReturnRows(sqlmock.NewRows([]string{"station_name"}).AddRow([]byte("Congress Avenue")))

	db := &DB{Pool: mockDb, Handler: &mockDialectHandler{}}
	rows, err := db.Execute(context.Background(), "SELECT station_name FROM stations", nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Congress Avenue", rows[0]["station_name"])
}

func TestExecuteQueryError(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("syntax error"))

	db := &DB{Pool: mockDb, Handler: &mockDialectHandler{}}
	_, err = db.Execute(context.Background(), "SELECT nonsense", nil)
	assert.Error(t, err)
}

func TestExecuteNilPool(t *testing.T) {
	db := &DB{Handler: &mockDialectHandler{}}
	_, err := db.Execute(context.Background(), "SELECT 1", nil)
	assert.Error(t, err)
}

package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/database"
)

func TestQuoteIdentifier(t *testing.T) {
	h := postgresHandler{}
	assert.Equal(t, `"trips"`, h.QuoteIdentifier("trips"))
	assert.Equal(t, `"we""ird"`, h.QuoteIdentifier(`we"ird`))
}

func TestDialectSpellings(t *testing.T) {
	h := postgresHandler{}
	assert.Equal(t, "$1", h.Placeholder(1))
	assert.Equal(t, "$12", h.Placeholder(12))
	assert.Equal(t, "EXTRACT(EPOCH FROM (b - a)) / 60", h.MinutesBetween("a", "b"))
	assert.Equal(t, "DATE(trips.started_at)", h.DateOf("trips.started_at"))
	assert.Equal(t, "ROUND(CAST(AVG(x) AS numeric), 1)", h.Round("AVG(x)", 1))
	assert.Equal(t, "stations.station_name ILIKE $3", h.ContainsFold("stations.station_name", "$3"))
	assert.Equal(t, "LIMIT 1", h.LimitOne())
}

func TestListTables(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close()

	mock.ExpectQuery("SELECT table_name").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("daily_weather").AddRow("stations").AddRow("trips"))

	db := &database.DB{Pool: mockDb, Handler: postgresHandler{}}
	tables, err := postgresHandler{}.ListTables(context.Background(), db)

	require.NoError(t, err)
	assert.Equal(t, []string{"daily_weather", "stations", "trips"}, tables)
}

func TestListColumns(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDb.Close()

	mock.ExpectQuery("SELECT column_name, data_type, is_nullable").
		WithArgs("trips").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable"}).
			AddRow("trip_id", "integer", "NO").
			AddRow("rider_gender", "character varying", "YES"))

	db := &database.DB{Pool: mockDb, Handler: postgresHandler{}}
	columns, err := postgresHandler{}.ListColumns(context.Background(), db, "trips")

	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "trips", columns[0].Table)
	assert.Equal(t, "trip_id", columns[0].Column)
	assert.False(t, columns[0].Nullable)
	assert.True(t, columns[1].Nullable)
}

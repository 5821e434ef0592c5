package sqlserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	h := sqlServerHandler{}
	assert.Equal(t, "[trips]", h.QuoteIdentifier("trips"))
}

func TestDialectSpellings(t *testing.T) {
	h := sqlServerHandler{}
	assert.Equal(t, "@p1", h.Placeholder(1))
	assert.Equal(t, "@p4", h.Placeholder(4))
	assert.Equal(t, "DATEDIFF(MINUTE, a, b)", h.MinutesBetween("a", "b"))
	assert.Equal(t, "CONVERT(date, trips.started_at)", h.DateOf("trips.started_at"))
	assert.Equal(t, "ROUND(SUM(x), 1)", h.Round("SUM(x)", 1))
	assert.Equal(t, "LOWER(stations.station_name) LIKE LOWER(@p3)", h.ContainsFold("stations.station_name", "@p3"))
	assert.Equal(t, "OFFSET 0 ROWS FETCH NEXT 1 ROWS ONLY", h.LimitOne())
}

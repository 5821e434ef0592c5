package nlq

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDialect spells SQL the PostgreSQL way; the compiler tests only
// care that the fragments assemble correctly around it.
type testDialect struct{}

func (testDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (testDialect) MinutesBetween(start, end string) string {
	return fmt.Sprintf("EXTRACT(EPOCH FROM (%s - %s)) / 60", end, start)
}
func (testDialect) DateOf(expr string) string { return fmt.Sprintf("DATE(%s)", expr) }
func (testDialect) Round(expr string, places int) string {
	return fmt.Sprintf("ROUND(CAST(%s AS numeric), %d)", expr, places)
}
func (testDialect) ContainsFold(col, placeholder string) string {
	return fmt.Sprintf("%s ILIKE %s", col, placeholder)
}
func (testDialect) LimitOne() string { return "LIMIT 1" }

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c := NewCompiler(NewMatcher(testSchema(), DefaultMinScore), testDialect{}, 2025)
	c.now = func() time.Time {
		return time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	}
	return c
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// assertPlaceholders checks the 1:1 correspondence between positional
// placeholders in the text and the bound parameter list.
func assertPlaceholders(t *testing.T, q CompiledQuery) {
	t.Helper()
	found := placeholderPattern.FindAllString(q.Text, -1)
	require.Len(t, found, len(q.Parameters))
	for i, ph := range found {
		assert.Equal(t, fmt.Sprintf("$%d", i+1), ph)
	}
}

func TestCompileTally(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("How many trips were made?")

	assert.Equal(t, IntentTally, q.Intent)
	assert.Equal(t, "SELECT COUNT(*) AS trip_count FROM trips", q.Text)
	assert.Empty(t, q.Parameters)
	assertPlaceholders(t, q)
}

func TestCompileAverageWithLocationAndDateRange(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("What was the average ride time for journeys that started at Congress Avenue in June 2025?")

	assert.Equal(t, IntentAverage, q.Intent)
	assert.Equal(t,
		"SELECT ROUND(CAST(AVG(EXTRACT(EPOCH FROM (trips.ended_at - trips.started_at)) / 60) AS numeric), 0) AS avg_duration_minutes"+
			" FROM trips LEFT JOIN stations ON trips.start_station_id = stations.station_id"+
			" WHERE trips.started_at >= $1 AND trips.started_at <= $2 AND stations.station_name ILIKE $3",
		q.Text)
	assert.Equal(t, []any{
		"2025-06-01 00:00:00.000",
		"2025-06-30 23:59:59.999",
		"%Congress Avenue%",
	}, q.Parameters)
	assertPlaceholders(t, q)
}

func TestCompileMaximumStationFirstWeek(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("Which docking point saw the most departures during the first week of June 2025?")

	assert.Equal(t, IntentMaximum, q.Intent)
	assert.Equal(t,
		"SELECT stations.station_name, COUNT(*) AS trip_count"+
			" FROM trips LEFT JOIN stations ON trips.start_station_id = stations.station_id"+
			" WHERE trips.started_at >= $1 AND trips.started_at <= $2"+
			" GROUP BY stations.station_name"+
			" ORDER BY trip_count DESC LIMIT 1",
		q.Text)
	assert.Equal(t, []any{
		"2025-06-01 00:00:00.000",
		"2025-06-07 23:59:59.999",
	}, q.Parameters)
	assertPlaceholders(t, q)
}

// Distance vocabulary forces TOTAL even though the question opens with
// "how many"; the filter binds, in order, two date parameters, the
// gender value and the precipitation threshold.
func TestCompileTotalDistanceGenderRain(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("How many kilometres were ridden by women on rainy days in June 2025?")

	assert.Equal(t, IntentTotal, q.Intent)
	assert.Equal(t,
		"SELECT ROUND(CAST(SUM(trips.distance_km) AS numeric), 1) AS total_distance_km"+
			" FROM trips LEFT JOIN daily_weather ON DATE(trips.started_at) = daily_weather.weather_date"+
			" WHERE trips.started_at >= $1 AND trips.started_at <= $2"+
			" AND trips.rider_gender = $3 AND daily_weather.precipitation_mm > $4",
		q.Text)
	assert.Equal(t, []any{
		"2025-06-01 00:00:00.000",
		"2025-06-30 23:59:59.999",
		"female",
		0,
	}, q.Parameters)
	assertPlaceholders(t, q)
}

func TestCompileLastMonthRelativeToNow(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("How many trips were taken last month?")

	assert.Equal(t, "SELECT COUNT(*) AS trip_count FROM trips"+
		" WHERE trips.started_at >= $1 AND trips.started_at <= $2", q.Text)
	assert.Equal(t, []any{
		"2025-06-01 00:00:00.000",
		"2025-06-30 23:59:59.999",
	}, q.Parameters)
	assertPlaceholders(t, q)
}

func TestCompileMaleGenderPredicate(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("How many trips were taken by men?")

	assert.Equal(t, "SELECT COUNT(*) AS trip_count FROM trips"+
		" WHERE trips.rider_gender = $1", q.Text)
	assert.Equal(t, []any{"male"}, q.Parameters)
}

// "women" contains "men" as a substring; the gender predicate has to
// be token-exact so it never misreads the question.
func TestCompileWomenIsNotMen(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("How many trips were taken by women?")

	assert.Equal(t, []any{"female"}, q.Parameters)
}

func TestCompileEnumerateStations(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("Which stations are in the busiest districts?")

	// "busiest" classifies as MAXIMUM before "which" is reached.
	assert.Equal(t, IntentMaximum, q.Intent)

	q = c.Compile("List the stations riders depart from")
	assert.Equal(t, IntentEnumerate, q.Intent)
	assert.Contains(t, q.Text, "SELECT DISTINCT ")
	assert.Contains(t, q.Text, "FROM trips LEFT JOIN stations")
	assert.Empty(t, q.Parameters)
}

// A question with no recognizable vocabulary still compiles to a
// syntactically valid query with no parameters.
func TestCompileFallback(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("show me unicorn data")

	assert.Equal(t, IntentFilter, q.Intent)
	assert.Equal(t, "SELECT * FROM trips", q.Text)
	assert.Empty(t, q.Parameters)
}

// Question text only ever selects among fixed fragments: SQL control
// keywords smuggled into a question must never surface in the compiled
// text, and every bound parameter stays a compiler-chosen literal.
func TestCompileNeverEmbedsQuestionKeywords(t *testing.T) {
	c := newTestCompiler(t)

	controlKeywords := []string{"DROP", "DELETE", "UPDATE", "INSERT", "ALTER"}
	questions := []string{
		"how many trips; DROP TABLE trips --",
		"list stations'; DELETE FROM stations; --",
		"average ride duration UPDATE trips SET distance_km = 0",
		"INSERT INTO trips VALUES (1); how many trips",
		"which docking station ALTER TABLE stations last month",
	}
	compilerLiterals := map[string]bool{
		"female": true, "male": true, "%Congress Avenue%": true,
	}

	for _, question := range questions {
		q := c.Compile(question)

		upper := strings.ToUpper(q.Text)
		for _, kw := range controlKeywords {
			assert.NotContains(t, upper, kw, "question: %s", question)
		}
		assertPlaceholders(t, q)

		for _, p := range q.Parameters {
			str, ok := p.(string)
			if !ok {
				continue
			}
			if _, err := time.Parse(timestampLayout, str); err == nil {
				continue
			}
			assert.True(t, compilerLiterals[str], "unexpected bound literal %q for question %q", str, question)
		}
	}
}

// A MAXIMUM question with no station vocabulary must not emit a
// GROUP BY or ORDER BY that references an unjoined dimension.
func TestCompileMaximumWithoutStationVocabulary(t *testing.T) {
	c := newTestCompiler(t)

	q := c.Compile("What is the most common rider gender?")

	assert.Equal(t, IntentMaximum, q.Intent)
	assert.NotContains(t, q.Text, "GROUP BY")
	assert.NotContains(t, q.Text, "ORDER BY")
	assert.NotContains(t, q.Text, "stations.")
}

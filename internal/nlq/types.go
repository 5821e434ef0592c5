// Package nlq compiles natural-language questions about the trip
// analytics domain into parameterized SQL.
package nlq

import "time"

// Intent is the analytic operation a question asks for.
type Intent int

const (
	// IntentFilter is the fallback when no intent keyword matches.
	IntentFilter Intent = iota
	IntentTally
	IntentAverage
	IntentTotal
	IntentMaximum
	IntentMinimum
	IntentEnumerate
)

func (i Intent) String() string {
	switch i {
	case IntentTally:
		return "tally"
	case IntentAverage:
		return "average"
	case IntentTotal:
		return "total"
	case IntentMaximum:
		return "maximum"
	case IntentMinimum:
		return "minimum"
	case IntentEnumerate:
		return "enumerate"
	default:
		return "filter"
	}
}

// ColumnDescriptor identifies one column of the analytic schema.
type ColumnDescriptor struct {
	Table    string
	Column   string
	DataType string
	Nullable bool
}

// TableSchema is one table with its columns in ordinal order.
type TableSchema struct {
	Name    string
	Columns []ColumnDescriptor
}

// SchemaSnapshot is the full analytic schema, loaded once at startup
// and treated as read-only afterwards.
type SchemaSnapshot struct {
	Tables []TableSchema
}

// ColumnMatch is a scored candidate mapping from a question token to a
// schema column. Score is the sole ranking key; ties keep discovery
// order.
type ColumnMatch struct {
	Table    string
	Column   string
	DataType string
	Score    float64
}

// DateRange is an inclusive start/end pair extracted from informal
// date phrasing.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CompiledQuery is the final compiler artifact. Text holds positional
// placeholders whose ordinals correspond 1:1 to Parameters.
type CompiledQuery struct {
	Text       string
	Parameters []any
	Intent     Intent
}

// Row is one result row keyed by column name.
type Row map[string]any

// Dialect supplies the store-specific SQL spellings the compiler cannot
// assume. The dialect handlers in internal/database implement it.
type Dialect interface {
	// Placeholder renders the positional placeholder for the 1-based
	// ordinal n.
	Placeholder(n int) string
	// MinutesBetween renders the elapsed minutes between two timestamp
	// expressions.
	MinutesBetween(start, end string) string
	// DateOf renders the calendar-date projection of a timestamp
	// expression.
	DateOf(expr string) string
	// Round renders expr rounded to the given number of decimal places.
	Round(expr string, places int) string
	// ContainsFold renders a case-insensitive LIKE of col against a
	// bound placeholder.
	ContainsFold(col, placeholder string) string
	// LimitOne renders the clause capping a result to a single row.
	LimitOne() string
}

package nlq

import (
	"sort"
	"strings"
	"sync"
)

const (
	// containmentScore is awarded when token and column name contain
	// each other in either direction.
	containmentScore = 0.9
	// synonymScore is awarded when a domain synonym of the token
	// relates to the column name.
	synonymScore = 0.8
	// tableBonus is added when the token also relates to the owning
	// table's name. Totals above 1.0 are not clamped.
	tableBonus = 0.1

	// DefaultMinScore is the threshold below which a candidate pair is
	// discarded.
	DefaultMinScore = 0.3
)

// Matcher scores question tokens against the cached schema and ranks
// the resulting column candidates. Results are memoized per token set;
// the cache is replaced together with the schema so stale scores never
// survive a reload.
type Matcher struct {
	mu       sync.RWMutex
	schema   SchemaSnapshot
	cache    map[string][]ColumnMatch
	minScore float64
}

func NewMatcher(schema SchemaSnapshot, minScore float64) *Matcher {
	return &Matcher{
		schema:   schema,
		cache:    make(map[string][]ColumnMatch),
		minScore: minScore,
	}
}

// SetSchema atomically swaps in a new snapshot and an emptied cache.
func (m *Matcher) SetSchema(schema SchemaSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schema = schema
	m.cache = make(map[string][]ColumnMatch)
}

func (m *Matcher) Schema() SchemaSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schema
}

// cacheKey joins the duplicate-free token set in sorted order, so two
// questions with the same meaningful words share one cache entry
// regardless of phrasing.
func cacheKey(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Match returns all (token, column) candidates at or above the minimum
// score, ranked descending by score with ties kept in discovery order.
// An empty schema yields an empty list.
func (m *Matcher) Match(tokens []string) []ColumnMatch {
	key := cacheKey(tokens)

	m.mu.RLock()
	cached, ok := m.cache[key]
	schema := m.schema
	m.mu.RUnlock()
	if ok {
		return cached
	}

	var matches []ColumnMatch
	for _, tok := range tokens {
		for _, table := range schema.Tables {
			tableName := strings.ToLower(table.Name)
			for _, col := range table.Columns {
				score := scoreToken(tok, strings.ToLower(col.Column), tableName)
				if score >= m.minScore {
					matches = append(matches, ColumnMatch{
						Table:    col.Table,
						Column:   col.Column,
						DataType: col.DataType,
						Score:    score,
					})
				}
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	m.mu.Lock()
	m.cache[key] = matches
	m.mu.Unlock()
	return matches
}

// scoreToken combines three independent signals: exact containment,
// synonym-expanded containment, and general string similarity. The
// base score is the maximum of the three; relating to the table name
// adds a fixed bonus on top.
func scoreToken(token, column, table string) float64 {
	best := 0.0
	if containsEither(token, column) {
		best = containmentScore
	}
	if best < synonymScore {
		for _, syn := range synonymsOf(token) {
			if containsEither(syn, column) {
				best = synonymScore
				break
			}
		}
	}
	if sim := Similarity(token, column); sim > best {
		best = sim
	}
	if best > 0 && containsEither(token, table) {
		best += tableBonus
	}
	return best
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

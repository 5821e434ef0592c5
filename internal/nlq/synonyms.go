package nlq

// synonymGroups holds the domain vocabulary clusters. Every word in a
// group is a synonym of every other word in the same group.
var synonymGroups = [][]string{
	{"time", "duration", "minutes"},
	{"station", "stations", "docking", "point", "points", "hub", "hubs", "avenue"},
	{"women", "female"},
	{"men", "male"},
	{"rainy", "rain"},
	{"distance", "kilometres", "kilometers", "km", "miles"},
	{"trip", "trips", "ride", "rides", "journey", "journeys", "departure", "departures"},
	{"weather", "precipitation"},
}

// synonymTable is the bidirectional lookup built once from
// synonymGroups and never mutated afterwards.
var synonymTable = buildSynonymTable()

func buildSynonymTable() map[string][]string {
	table := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, word := range group {
			for _, other := range group {
				if other != word {
					table[word] = append(table[word], other)
				}
			}
		}
	}
	return table
}

func synonymsOf(token string) []string {
	return synonymTable[token]
}

package nlq

import "strings"

// intentRule maps keyword substrings to an Intent. Rules are evaluated
// top to bottom against the lower-cased raw question; the first hit
// wins.
type intentRule struct {
	keywords []string
	intent   Intent
}

// The rule order is load-bearing: distance vocabulary must outrank the
// generic count/sum keywords so that "how many kilometres" reads as a
// distance total rather than a row count, and the aggregation rules
// must outrank the enumeration words ("which", "what") that often
// appear alongside them.
var intentRules = []intentRule{
	{[]string{"distance", "kilometres", "kilometers", "km", "miles"}, IntentTotal},
	{[]string{"average", "avg", "mean"}, IntentAverage},
	{[]string{"sum", "total"}, IntentTotal},
	{[]string{"most", "maximum", "highest", "busiest"}, IntentMaximum},
	{[]string{"least", "minimum", "fewest", "lowest"}, IntentMinimum},
	{[]string{"count", "how many"}, IntentTally},
	{[]string{"which", "what", "list"}, IntentEnumerate},
}

// Classify maps a question to exactly one Intent. Questions with no
// recognized keyword classify as IntentFilter.
func Classify(question string) Intent {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.intent
			}
		}
	}
	return IntentFilter
}

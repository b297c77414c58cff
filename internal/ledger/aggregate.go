package ledger

import "iter"

// Aggregate applies events strictly in order and returns the final summaries.
func Aggregate(events iter.Seq[Event]) []AccountSummary {
	engine := NewEngine()
	for ev := range events {
		engine.Apply(ev)
	}
	return engine.Summaries()
}

package rules

import "github.com/rutacat/rutacat/internal/rng"

// HistoryCapacity bounds how many recently issued rule ids each cadence
// keeps. Callers own persistence of the history; this package only reads
// the snapshot it is handed.
const HistoryCapacity = 60

// PickWithHistory deterministically shuffles the pool with a stream seeded
// from the cadence key and returns the first rule not present in recent.
// Recency is a soft preference: when every rule was recently used, the
// first shuffled entry wins anyway, so a puzzle is always produced.
// Returns nil only for an empty pool.
func PickWithHistory(pool []Definition, cadenceKey string, recent []string) *Definition {
	if len(pool) == 0 {
		return nil
	}

	shuffled := append([]Definition(nil), pool...)
	rng.FromString(cadenceKey).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	recentSet := make(map[string]bool, len(recent))
	for _, id := range recent {
		recentSet[id] = true
	}

	for i := range shuffled {
		if !recentSet[shuffled[i].ID] {
			return &shuffled[i]
		}
	}
	return &shuffled[0]
}

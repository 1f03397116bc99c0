package stats

import (
	"sort"

	"github.com/park285/chess-archive-insight/internal/domain"
)

type TimeClassStat struct {
	Games   int
	Wins    int
	WinRate float64
}

// ByTimeClass aggregates every record under its raw time class.
func ByTimeClass(ds domain.Dataset) map[string]TimeClassStat {
	out := map[string]TimeClassStat{}
	ds.Each(func(_ int, rec domain.GameRecord) bool {
		st := out[rec.TimeClass]
		st.Games++
		st.Wins += winValue(rec)
		out[rec.TimeClass] = st
		return true
	})
	for k, st := range out {
		st.WinRate = WinRate(st.Wins, st.Games)
		out[k] = st
	}
	return out
}

// SortedTimeClasses returns the keys of a ByTimeClass result in lexical order.
func SortedTimeClasses(m map[string]TimeClassStat) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package stats

import (
	"slices"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/chess-archive-insight/internal/domain"
)

// TopOpeningsLimit is how many openings a table keeps.
const TopOpeningsLimit = 10

type OpeningStat struct {
	Label   string
	Games   int
	Wins    int
	WinRate float64
}

// TopOpenings picks the most played openings for the given side (ties keep
// the order in which openings were first seen), then orders them by win rate,
// highest first, keeping that order for equal rates.
func TopOpenings(ds domain.Dataset, player string, side nchess.Color) []OpeningStat {
	var (
		order []string
		byKey = map[string]*OpeningStat{}
	)
	ds.Each(func(_ int, rec domain.GameRecord) bool {
		if SideOf(rec, player) != side {
			return true
		}
		label := rec.OpeningLabel()
		st, ok := byKey[label]
		if !ok {
			st = &OpeningStat{Label: label}
			byKey[label] = st
			order = append(order, label)
		}
		st.Games++
		st.Wins += winValue(rec)
		return true
	})
	if len(order) == 0 {
		return []OpeningStat{}
	}

	out := make([]OpeningStat, 0, len(order))
	for _, label := range order {
		out = append(out, *byKey[label])
	}
	slices.SortStableFunc(out, func(a, b OpeningStat) int { return b.Games - a.Games })
	if len(out) > TopOpeningsLimit {
		out = out[:TopOpeningsLimit]
	}
	for i := range out {
		out[i].WinRate = WinRate(out[i].Wins, out[i].Games)
	}
	slices.SortStableFunc(out, func(a, b OpeningStat) int {
		switch {
		case a.WinRate > b.WinRate:
			return -1
		case a.WinRate < b.WinRate:
			return 1
		default:
			return 0
		}
	})
	return out
}

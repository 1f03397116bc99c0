package stats

import (
	"slices"
	"time"

	"github.com/park285/chess-archive-insight/internal/domain"
)

type RatingPoint struct {
	Date      time.Time
	UserElo   int
	TimeClass string
}

// RatingTimeline lists the player's rating per game, oldest first. Records
// with an unparseable date are left out; equal dates keep dataset order.
func RatingTimeline(ds domain.Dataset, player string) []RatingPoint {
	points := make([]RatingPoint, 0, ds.Len())
	ds.Each(func(_ int, rec domain.GameRecord) bool {
		day, ok := rec.PlayedOn()
		if !ok {
			return true
		}
		points = append(points, RatingPoint{Date: day, UserElo: UserElo(rec, player), TimeClass: rec.TimeClass})
		return true
	})
	slices.SortStableFunc(points, func(a, b RatingPoint) int { return a.Date.Compare(b.Date) })
	return points
}

// LatestByTimeClass returns the last rating point of each time class.
func LatestByTimeClass(points []RatingPoint) map[string]RatingPoint {
	out := make(map[string]RatingPoint)
	for _, p := range points {
		out[p.TimeClass] = p
	}
	return out
}

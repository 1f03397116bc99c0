package presenter

import (
	"github.com/park285/chess-archive-insight/internal/archive"
	"github.com/park285/chess-archive-insight/internal/domain"
	"github.com/park285/chess-archive-insight/internal/pipeline"
	"github.com/park285/chess-archive-insight/internal/stats"
	"github.com/park285/chess-archive-insight/pkg/insightdto"
)

const dateLayout = "2006-01-02"

// ToDTOReport converts a pipeline report; games are copied only when asked for.
func ToDTOReport(rep *pipeline.Report, withGames bool) *insightdto.Report {
	if rep == nil {
		return nil
	}
	out := &insightdto.Report{
		RunID: rep.RunID,
		Query: insightdto.Query{
			Player:    rep.Query.Player,
			Start:     rep.Query.Start,
			End:       rep.Query.End,
			TimeClass: rep.Query.TimeClass,
		},
		Months:        append([]string{}, rep.Months...),
		GameCount:     rep.Dataset.Len(),
		WhiteOpenings: toDTOOpenings(rep.WhiteOpenings),
		BlackOpenings: toDTOOpenings(rep.BlackOpenings),
		TimeClasses:   toDTOTimeClasses(rep.TimeClasses),
		Timeline:      toDTOTimeline(rep.Timeline),
		Tally:         toDTOTally(rep.Tally),
		StartedAt:     rep.StartedAt,
		ElapsedMillis: rep.Elapsed.Milliseconds(),
	}
	if withGames {
		out.Games = toDTOGames(rep.Dataset)
	}
	return out
}

func toDTOOpenings(list []stats.OpeningStat) []insightdto.OpeningStat {
	out := make([]insightdto.OpeningStat, 0, len(list))
	for _, o := range list {
		out = append(out, insightdto.OpeningStat{Opening: o.Label, Games: o.Games, Wins: o.Wins, WinRate: o.WinRate})
	}
	return out
}

func toDTOTimeClasses(m map[string]stats.TimeClassStat) []insightdto.TimeClassStat {
	keys := stats.SortedTimeClasses(m)
	out := make([]insightdto.TimeClassStat, 0, len(keys))
	for _, k := range keys {
		st := m[k]
		out = append(out, insightdto.TimeClassStat{TimeClass: k, Games: st.Games, Wins: st.Wins, WinRate: st.WinRate})
	}
	return out
}

func toDTOTimeline(points []stats.RatingPoint) []insightdto.RatingPoint {
	out := make([]insightdto.RatingPoint, 0, len(points))
	for _, p := range points {
		out = append(out, insightdto.RatingPoint{Date: p.Date.Format(dateLayout), Rating: p.UserElo, TimeClass: p.TimeClass})
	}
	return out
}

func toDTOTally(t archive.Tally) insightdto.Tally {
	return insightdto.Tally{
		Seen:           t.Seen,
		Kept:           t.Kept,
		FilteredOut:    t.FilteredOut,
		MissingOpening: t.MissingOpening,
		Malformed:      t.Malformed,
	}
}

func toDTOGames(ds domain.Dataset) []insightdto.Game {
	out := make([]insightdto.Game, 0, ds.Len())
	ds.Each(func(_ int, g domain.GameRecord) bool {
		out = append(out, insightdto.Game{
			TimeClass:   g.TimeClass,
			Date:        g.Date,
			White:       g.White,
			Black:       g.Black,
			GameLink:    g.GameLink,
			OpeningCode: g.OpeningCode,
			OpeningName: g.OpeningName,
			OpeningLink: g.OpeningLink,
			Result:      string(g.Result),
			WhiteElo:    g.WhiteElo,
			BlackElo:    g.BlackElo,
		})
		return true
	})
	return out
}

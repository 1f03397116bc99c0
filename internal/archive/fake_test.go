package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/chess-archive-insight/internal/domain"
)

type fakeSource struct {
	archives []string
	indexErr error
	months   map[string][]domain.RawGame
	monthErr map[string]error
	calls    []string
}

func (f *fakeSource) ArchiveIndex(ctx context.Context, player string) ([]string, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return f.archives, nil
}

func (f *fakeSource) MonthlyGames(ctx context.Context, player, year, month string) ([]domain.RawGame, error) {
	key := year + "-" + month
	f.calls = append(f.calls, key)
	if err := f.monthErr[key]; err != nil {
		return nil, err
	}
	return f.months[key], nil
}

type pgnFields struct {
	Date, White, Black, Link, ECO, ECOUrl, Termination, WhiteElo, BlackElo string
}

func defaultFields() pgnFields {
	return pgnFields{
		Date:        "2025.03.01",
		White:       "alice",
		Black:       "bob",
		Link:        "https://www.chess.com/game/live/1",
		ECO:         "B01",
		ECOUrl:      "https://www.chess.com/openings/Scandinavian-Defense",
		Termination: "alice won by resignation",
		WhiteElo:    "1500",
		BlackElo:    "1400",
	}
}

// buildPGN renders the tags chess.com puts in front of the movetext; empty fields are omitted.
func buildPGN(f pgnFields) string {
	var b strings.Builder
	tag := func(name, v string) {
		if v != "" {
			fmt.Fprintf(&b, "[%s \"%s\"]\n", name, v)
		}
	}
	tag("Event", "Live Chess")
	tag("Site", "Chess.com")
	tag("Date", f.Date)
	tag("Round", "-")
	tag("White", f.White)
	tag("Black", f.Black)
	tag("Result", "1-0")
	tag("CurrentPosition", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	tag("Timezone", "UTC")
	tag("ECO", f.ECO)
	tag("ECOUrl", f.ECOUrl)
	tag("UTCDate", f.Date)
	tag("UTCTime", "18:00:00")
	tag("WhiteElo", f.WhiteElo)
	tag("BlackElo", f.BlackElo)
	tag("TimeControl", "180")
	tag("Termination", f.Termination)
	tag("StartTime", "18:00:00")
	tag("EndDate", f.Date)
	tag("EndTime", "18:09:00")
	tag("Link", f.Link)
	b.WriteString("\n1. e4 {[%clk 0:02:59.9]} 1... d5 {[%clk 0:02:58]} 1-0\n")
	return b.String()
}

func rawGame(timeClass string, f pgnFields) domain.RawGame {
	return domain.RawGame{TimeClass: timeClass, PGN: buildPGN(f)}
}

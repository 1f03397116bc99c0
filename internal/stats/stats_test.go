package stats

import (
	"fmt"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/chess-archive-insight/internal/domain"
)

func game(white, black, opening, code string, result domain.Result, tc, date string, whiteElo, blackElo int) domain.GameRecord {
	return domain.GameRecord{
		TimeClass:   tc,
		Date:        date,
		White:       white,
		Black:       black,
		OpeningCode: code,
		OpeningName: opening,
		Result:      result,
		WhiteElo:    whiteElo,
		BlackElo:    blackElo,
	}
}

func TestSideOfIsCaseInsensitive(t *testing.T) {
	rec := game("Alice", "bob", "X", "A00", domain.ResultWin, "blitz", "2025.01.01", 1500, 1400)
	if SideOf(rec, "alice") != nchess.White {
		t.Fatalf("expected White")
	}
	if SideOf(rec, "bob") != nchess.Black {
		t.Fatalf("expected Black")
	}
	if UserElo(rec, "ALICE") != 1500 || UserElo(rec, "bob") != 1400 {
		t.Fatalf("UserElo mismatch")
	}
}

func TestTopOpeningsSortedByWinRate(t *testing.T) {
	ds := domain.NewDataset([]domain.GameRecord{
		game("me", "x", "Italian", "C50", domain.ResultLoss, "blitz", "2025.01.01", 1500, 1500),
		game("me", "x", "Italian", "C50", domain.ResultWin, "blitz", "2025.01.02", 1500, 1500),
		game("me", "x", "London", "D02", domain.ResultWin, "blitz", "2025.01.03", 1500, 1500),
		game("x", "me", "Sicilian", "B20", domain.ResultWin, "blitz", "2025.01.04", 1500, 1500),
		game("me", "x", "Ruy", "C60", domain.ResultLoss, "blitz", "2025.01.05", 1500, 1500),
	})

	white := TopOpenings(ds, "me", nchess.White)
	if len(white) != 3 {
		t.Fatalf("expected 3 white openings, got %d", len(white))
	}
	wantOrder := []string{"London (D02)", "Italian (C50)", "Ruy (C60)"}
	for i, w := range wantOrder {
		if white[i].Label != w {
			t.Fatalf("position %d: got %s want %s", i, white[i].Label, w)
		}
	}
	if white[1].Games != 2 || white[1].Wins != 1 || white[1].WinRate != 50 {
		t.Fatalf("unexpected Italian stat %+v", white[1])
	}

	black := TopOpenings(ds, "me", nchess.Black)
	if len(black) != 1 || black[0].Label != "Sicilian (B20)" || black[0].WinRate != 100 {
		t.Fatalf("unexpected black table %+v", black)
	}
}

func TestTopOpeningsLimitAndTieBreak(t *testing.T) {
	var recs []domain.GameRecord
	// twelve openings played once, in order O0..O11, all losses
	for i := 0; i < 12; i++ {
		recs = append(recs, game("me", "x", fmt.Sprintf("O%d", i), "A00", domain.ResultLoss, "blitz", "2025.01.01", 1500, 1500))
	}
	// O11 played a second time so it enters the top ten on count
	recs = append(recs, game("me", "x", "O11", "A00", domain.ResultLoss, "blitz", "2025.01.02", 1500, 1500))

	out := TopOpenings(domain.NewDataset(recs), "me", nchess.White)
	if len(out) != TopOpeningsLimit {
		t.Fatalf("expected %d openings, got %d", TopOpeningsLimit, len(out))
	}
	// all win rates are equal, so the count order survives: O11 first, then O0..O8
	if out[0].Label != "O11 (A00)" {
		t.Fatalf("first = %s", out[0].Label)
	}
	for i := 1; i < len(out); i++ {
		want := fmt.Sprintf("O%d (A00)", i-1)
		if out[i].Label != want {
			t.Fatalf("position %d: got %s want %s", i, out[i].Label, want)
		}
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].WinRate < out[i].WinRate {
			t.Fatalf("not sorted by win rate at %d", i)
		}
	}
}

func TestTopOpeningsEmptySide(t *testing.T) {
	ds := domain.NewDataset([]domain.GameRecord{
		game("me", "x", "Italian", "C50", domain.ResultWin, "blitz", "2025.01.01", 1500, 1500),
	})
	out := TopOpenings(ds, "me", nchess.Black)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestByTimeClassScenario(t *testing.T) {
	// Three blitz games between A and B; the termination rule made two of them wins.
	ds := domain.NewDataset([]domain.GameRecord{
		game("A", "B", "X", "A00", domain.ResultWin, "blitz", "2025.03.01", 1500, 1400),
		game("A", "B", "X", "A00", domain.ResultLoss, "blitz", "2025.03.01", 1500, 1400),
		game("B", "A", "X", "A00", domain.ResultWin, "blitz", "2025.03.01", 1400, 1500),
	})
	out := ByTimeClass(ds)
	if len(out) != 1 {
		t.Fatalf("expected one time class, got %v", out)
	}
	st := out["blitz"]
	if st.Games != 3 || st.Wins != 2 || st.WinRate != 100*2.0/3.0 {
		t.Fatalf("unexpected blitz stat %+v", st)
	}
}

func TestByTimeClassCoversEveryClass(t *testing.T) {
	ds := domain.NewDataset([]domain.GameRecord{
		game("me", "x", "X", "A00", domain.ResultWin, "rapid", "2025.01.01", 1, 1),
		game("me", "x", "X", "A00", domain.ResultLoss, "bullet", "2025.01.01", 1, 1),
		game("me", "x", "X", "A00", domain.ResultWin, "rapid", "2025.01.01", 1, 1),
		game("me", "x", "X", "A00", domain.ResultWin, "daily", "2025.01.01", 1, 1),
	})
	out := ByTimeClass(ds)
	keys := SortedTimeClasses(out)
	want := []string{"bullet", "daily", "rapid"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Fatalf("keys = %v want %v", keys, want)
	}
	if out["rapid"].Games != 2 || out["rapid"].WinRate != 100 {
		t.Fatalf("rapid = %+v", out["rapid"])
	}
	if out["bullet"].WinRate != 0 {
		t.Fatalf("bullet = %+v", out["bullet"])
	}
}

func TestRatingTimeline(t *testing.T) {
	ds := domain.NewDataset([]domain.GameRecord{
		game("me", "x", "X", "A00", domain.ResultWin, "blitz", "2025.03.02", 1510, 1400),
		game("x", "me", "X", "A00", domain.ResultWin, "rapid", "2025.03.01", 1400, 1600),
		game("me", "x", "X", "A00", domain.ResultWin, "blitz", "????.??.??", 1520, 1400),
		game("me", "x", "X", "A00", domain.ResultWin, "bullet", "2025.03.01", 1200, 1400),
	})
	points := RatingTimeline(ds, "me")
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Fatalf("timeline not ordered at %d", i)
		}
	}
	// equal dates keep dataset order: rapid came before bullet
	if points[0].TimeClass != "rapid" || points[0].UserElo != 1600 {
		t.Fatalf("first point %+v", points[0])
	}
	if points[1].TimeClass != "bullet" || points[1].UserElo != 1200 {
		t.Fatalf("second point %+v", points[1])
	}
	if points[2].UserElo != 1510 {
		t.Fatalf("third point %+v", points[2])
	}

	latest := LatestByTimeClass(points)
	if latest["blitz"].UserElo != 1510 || len(latest) != 3 {
		t.Fatalf("latest = %+v", latest)
	}
}

func TestRatingTimelineEmpty(t *testing.T) {
	ds := domain.NewDataset([]domain.GameRecord{
		game("me", "x", "X", "A00", domain.ResultWin, "blitz", "not a date", 1, 1),
	})
	if points := RatingTimeline(ds, "me"); len(points) != 0 {
		t.Fatalf("expected no points, got %v", points)
	}
}

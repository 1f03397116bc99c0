package stats

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/chess-archive-insight/internal/domain"
)

// SideOf is the colour the player had: White when the identifier matches the
// White tag case-insensitively, Black otherwise.
func SideOf(rec domain.GameRecord, player string) nchess.Color {
	if strings.EqualFold(strings.TrimSpace(rec.White), strings.TrimSpace(player)) {
		return nchess.White
	}
	return nchess.Black
}

// UserElo is the rating on the player's side of the board.
func UserElo(rec domain.GameRecord, player string) int {
	if SideOf(rec, player) == nchess.White {
		return rec.WhiteElo
	}
	return rec.BlackElo
}

func winValue(rec domain.GameRecord) int {
	if rec.Result == domain.ResultWin {
		return 1
	}
	return 0
}

// WinRate is 100 * wins / games, zero for no games.
func WinRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return 100 * float64(wins) / float64(games)
}

// ColorName renders a side as "White" or "Black".
func ColorName(c nchess.Color) string {
	switch c {
	case nchess.White:
		return "White"
	case nchess.Black:
		return "Black"
	default:
		return ""
	}
}

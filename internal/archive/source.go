package archive

import (
	"context"

	"github.com/park285/chess-archive-insight/internal/domain"
)

// Source is the remote archive service as the pipeline sees it.
type Source interface {
	ArchiveIndex(ctx context.Context, player string) ([]string, error)
	MonthlyGames(ctx context.Context, player, year, month string) ([]domain.RawGame, error)
}

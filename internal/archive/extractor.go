package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/chess-archive-insight/internal/domain"
	"go.uber.org/zap"
)

// Tally counts what happened to the raw entries of one or more months.
type Tally struct {
	Seen           int
	Kept           int
	FilteredOut    int
	MissingOpening int
	Malformed      int
}

func (t Tally) Add(o Tally) Tally {
	return Tally{
		Seen:           t.Seen + o.Seen,
		Kept:           t.Kept + o.Kept,
		FilteredOut:    t.FilteredOut + o.FilteredOut,
		MissingOpening: t.MissingOpening + o.MissingOpening,
		Malformed:      t.Malformed + o.Malformed,
	}
}

type entryOutcome int

const (
	entryKept entryOutcome = iota
	entryFilteredOut
	entryMissingOpening
	entryMalformed
)

// parseEntry is the single keep-or-drop decision for a raw entry.
func parseEntry(player, filter string, g domain.RawGame) (domain.GameRecord, entryOutcome) {
	if filter != domain.TimeClassAll && g.TimeClass != filter {
		return domain.GameRecord{}, entryFilteredOut
	}
	if !strings.Contains(g.PGN, tagECOURL) {
		return domain.GameRecord{}, entryMissingOpening
	}
	rec, ok := scanTags(g.PGN).record(player, g.TimeClass)
	if !ok {
		return domain.GameRecord{}, entryMalformed
	}
	return rec, entryKept
}

// Extractor turns monthly archives into GameRecords.
type Extractor struct {
	src    Source
	logger *zap.Logger
}

func NewExtractor(src Source, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{src: src, logger: logger}
}

// ExtractMonth fetches one month and parses every entry. Entries that are
// filtered out or malformed are dropped without error.
func (e *Extractor) ExtractMonth(ctx context.Context, player, month, filter string) ([]domain.GameRecord, Tally, error) {
	year, mm, err := SplitMonth(month)
	if err != nil {
		return nil, Tally{}, err
	}
	raw, err := e.src.MonthlyGames(ctx, player, year, mm)
	if err != nil {
		return nil, Tally{}, fmt.Errorf("extract %s: %w", month, err)
	}

	var (
		out   []domain.GameRecord
		tally = Tally{Seen: len(raw)}
	)
	for _, g := range raw {
		rec, outcome := parseEntry(player, filter, g)
		switch outcome {
		case entryFilteredOut:
			tally.FilteredOut++
		case entryMissingOpening:
			tally.MissingOpening++
		case entryMalformed:
			tally.Malformed++
		default:
			tally.Kept++
			out = append(out, rec)
		}
	}

	e.logger.Debug("month_extracted",
		zap.String("player", player),
		zap.String("month", month),
		zap.Int("seen", tally.Seen),
		zap.Int("kept", tally.Kept),
		zap.Int("filtered_out", tally.FilteredOut),
		zap.Int("missing_opening", tally.MissingOpening),
		zap.Int("malformed", tally.Malformed),
	)
	return out, tally, nil
}

// Extract walks months in order and folds their records into one Dataset.
// Any fetch failure aborts the whole range; no partial dataset is returned.
func (e *Extractor) Extract(ctx context.Context, player string, months []string, filter string) (domain.Dataset, Tally, error) {
	var (
		ds    domain.Dataset
		total Tally
	)
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, Tally{}, err
		}
		recs, t, err := e.ExtractMonth(ctx, player, m, filter)
		if err != nil {
			return domain.Dataset{}, Tally{}, err
		}
		ds = ds.Append(recs)
		total = total.Add(t)
	}
	return ds, total, nil
}

package domain

import (
	"slices"
	"strings"
	"time"
)

// Result is the outcome of a game from the queried player's point of view.
type Result string

const (
	ResultWin  Result = "Win"
	ResultLoss Result = "Loss"
)

// TimeClassAll disables time-class filtering.
const TimeClassAll = "all"

// Time classes reported by the archive service.
const (
	TimeClassBullet = "bullet"
	TimeClassBlitz  = "blitz"
	TimeClassRapid  = "rapid"
	TimeClassDaily  = "daily"
)

var timeClassFilters = []string{TimeClassAll, TimeClassBullet, TimeClassBlitz, TimeClassRapid, TimeClassDaily}

// TimeClassFilters lists the accepted time-class filter values.
func TimeClassFilters() []string { return slices.Clone(timeClassFilters) }

// IsTimeClassFilter reports whether v is an accepted filter value.
func IsTimeClassFilter(v string) bool { return slices.Contains(timeClassFilters, v) }

// GameRecord is one parsed game. Records are only built from entries whose
// nine annotation tags were all present.
type GameRecord struct {
	TimeClass   string
	Date        string
	White       string
	Black       string
	GameLink    string
	OpeningCode string
	OpeningName string
	OpeningLink string
	Result      Result
	WhiteElo    int
	BlackElo    int
}

var dateLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02"}

// PlayedOn parses Date. PGN placeholders such as "????.??.??" do not parse.
func (g GameRecord) PlayedOn() (time.Time, bool) {
	raw := strings.TrimSpace(g.Date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// OpeningLabel is the grouping key used by the opening tables: "Name (CODE)".
func (g GameRecord) OpeningLabel() string {
	return g.OpeningName + " (" + g.OpeningCode + ")"
}

// Dataset is the ordered, read-only result of an extraction: months ascending,
// source order within a month.
type Dataset struct {
	records []GameRecord
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []GameRecord) Dataset {
	return Dataset{records: slices.Clone(records)}
}

// Append returns a new Dataset with more records after the existing ones.
// The receiver is left untouched.
func (d Dataset) Append(more []GameRecord) Dataset {
	return Dataset{records: slices.Concat(d.records, more)}
}

func (d Dataset) Len() int { return len(d.records) }

// Records returns a copy of the records in dataset order.
func (d Dataset) Records() []GameRecord { return slices.Clone(d.records) }

// Each calls fn for every record in order until fn returns false.
func (d Dataset) Each(fn func(i int, rec GameRecord) bool) {
	for i, rec := range d.records {
		if !fn(i, rec) {
			return
		}
	}
}

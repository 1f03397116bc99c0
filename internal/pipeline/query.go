package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/chess-archive-insight/internal/archive"
	"github.com/park285/chess-archive-insight/internal/domain"
)

// Query is what the presentation layer asks for.
type Query struct {
	Player    string
	Start     string
	End       string
	TimeClass string
}

// Normalize trims whitespace and defaults the filter to "all".
func (q Query) Normalize() Query {
	q.Player = strings.TrimSpace(q.Player)
	q.Start = strings.TrimSpace(q.Start)
	q.End = strings.TrimSpace(q.End)
	q.TimeClass = strings.ToLower(strings.TrimSpace(q.TimeClass))
	if q.TimeClass == "" {
		q.TimeClass = domain.TimeClassAll
	}
	return q
}

func (q Query) Validate() error {
	if q.Player == "" {
		return domain.InvalidQuery("player is required")
	}
	if !archive.IsMonthToken(q.Start) {
		return domain.InvalidQuery("start %q is not YYYY-MM", q.Start)
	}
	if !archive.IsMonthToken(q.End) {
		return domain.InvalidQuery("end %q is not YYYY-MM", q.End)
	}
	if !domain.IsTimeClassFilter(q.TimeClass) {
		return domain.InvalidQuery("time class %q must be one of %s", q.TimeClass, strings.Join(domain.TimeClassFilters(), ", "))
	}
	return nil
}

// DefaultRange is January through December of now's year.
func DefaultRange(now time.Time) (start, end string) {
	y := now.Year()
	return fmt.Sprintf("%04d-01", y), fmt.Sprintf("%04d-12", y)
}

// WithDefaults fills a missing start or end from DefaultRange and a missing
// filter from timeClass.
func (q Query) WithDefaults(now time.Time, timeClass string) Query {
	start, end := DefaultRange(now)
	if strings.TrimSpace(q.Start) == "" {
		q.Start = start
	}
	if strings.TrimSpace(q.End) == "" {
		q.End = end
	}
	if strings.TrimSpace(q.TimeClass) == "" {
		q.TimeClass = timeClass
	}
	return q
}

package archive

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/park285/chess-archive-insight/internal/domain"
	"go.uber.org/zap"
)

var monthTokenRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsMonthToken reports whether s is a zero-padded YYYY-MM token.
func IsMonthToken(s string) bool { return monthTokenRe.MatchString(s) }

// SplitMonth splits a YYYY-MM token into its year and month parts.
func SplitMonth(token string) (year, month string, err error) {
	if !IsMonthToken(token) {
		return "", "", domain.InvalidQuery("month %q is not YYYY-MM", token)
	}
	return token[:4], token[5:], nil
}

// MonthFromArchiveURL turns ".../games/2025/03" into "2025-03".
func MonthFromArchiveURL(u string) (string, bool) {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if len(u) < 7 {
		return "", false
	}
	token := strings.Replace(u[len(u)-7:], "/", "-", 1)
	if !IsMonthToken(token) {
		return "", false
	}
	return token, true
}

// Resolver fetches the months a player has archived games for.
type Resolver struct {
	src    Source
	logger *zap.Logger
}

func NewResolver(src Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{src: src, logger: logger}
}

// Resolve returns the archived month tokens in the order the service lists them.
func (r *Resolver) Resolve(ctx context.Context, player string) ([]string, error) {
	if strings.TrimSpace(player) == "" {
		return nil, domain.InvalidQuery("player is required")
	}
	urls, err := r.src.ArchiveIndex(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("resolve archive index: %w", err)
	}
	months := make([]string, 0, len(urls))
	for _, u := range urls {
		m, ok := MonthFromArchiveURL(u)
		if !ok {
			r.logger.Debug("archive_url_ignored", zap.String("url", u))
			continue
		}
		months = append(months, m)
	}
	r.logger.Debug("archive_index_resolved", zap.String("player", player), zap.Int("months", len(months)))
	return months, nil
}

// FilterMonths keeps the months m with start <= m <= end. Tokens are fixed-width
// and zero-padded, so string order is calendar order.
func FilterMonths(months []string, start, end string) ([]string, error) {
	var out []string
	for _, m := range months {
		if start <= m && m <= end {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s..%s", domain.ErrEmptyRange, start, end)
	}
	return out, nil
}

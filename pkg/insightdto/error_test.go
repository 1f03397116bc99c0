package insightdto

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/park285/chess-archive-insight/internal/domain"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"not found", fmt.Errorf("resolve archive index: %w", domain.ErrPlayerNotFound), CodePlayerNotFound, false},
		{"empty range", domain.ErrEmptyRange, CodeEmptyRange, false},
		{"invalid", domain.InvalidQuery("start %q is not YYYY-MM", "2023"), CodeInvalidQuery, false},
		{"fetch", &domain.FetchError{Op: "monthly_games", URL: "u", Status: 500, Err: errors.New("boom")}, CodeFetchFailed, true},
		{"canceled", fmt.Errorf("extract: %w", context.Canceled), CodeCanceled, true},
		{"other", errors.New("weird"), CodeInternal, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			if got.Code != tc.code || got.Retryable != tc.retryable {
				t.Fatalf("got %+v, want code=%s retryable=%v", got, tc.code, tc.retryable)
			}
			if got.Message == "" {
				t.Fatalf("message should carry the error text")
			}
		})
	}
}

func TestFromErrorPassthrough(t *testing.T) {
	src := DomainError{Code: "custom", Message: "kept"}
	if got := FromError(fmt.Errorf("wrap: %w", src)); got != src {
		t.Fatalf("expected passthrough, got %+v", got)
	}
	if got := FromError(nil); got != (DomainError{}) {
		t.Fatalf("nil should map to zero value, got %+v", got)
	}
}

func TestDomainErrorText(t *testing.T) {
	if (DomainError{Code: "x"}).Error() != "x" {
		t.Fatalf("code fallback")
	}
	if (DomainError{}).Error() == "" {
		t.Fatalf("default text")
	}
}

package insightdto

import (
	"context"
	"errors"

	"github.com/park285/chess-archive-insight/internal/domain"
)

const (
	CodePlayerNotFound = "player_not_found"
	CodeEmptyRange     = "empty_range"
	CodeInvalidQuery   = "invalid_query"
	CodeFetchFailed    = "fetch_failed"
	CodeCanceled       = "canceled"
	CodeInternal       = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "archive insight error"
}

// FromError maps the pipeline error taxonomy onto a caller facing error.
func FromError(err error) DomainError {
	if err == nil {
		return DomainError{}
	}
	var de DomainError
	if errors.As(err, &de) {
		return de
	}
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return DomainError{Code: CodePlayerNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrEmptyRange):
		return DomainError{Code: CodeEmptyRange, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidQuery):
		return DomainError{Code: CodeInvalidQuery, Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return DomainError{Code: CodeCanceled, Message: err.Error(), Retryable: true}
	case domain.IsFetchError(err):
		return DomainError{Code: CodeFetchFailed, Message: err.Error(), Retryable: true}
	default:
		return DomainError{Code: CodeInternal, Message: err.Error()}
	}
}

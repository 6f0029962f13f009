package gql

import (
	"log/slog"

	"inkfeed/app/domain"
)

// Error is a resolver failure. graphql-go copies Extensions into the
// "extensions" member of the reported error.
type Error struct {
	err *domain.Error
}

func (e *Error) Error() string { return e.err.PublicMessage() }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": e.err.StatusCode(),
	}
	if len(e.err.Fields) > 0 {
		ext["data"] = e.err.Fields
	}
	return ext
}

// wrap tags err for the response, logging store failures with their cause.
func wrap(logger *slog.Logger, op string, err error) error {
	de := domain.As(err)
	if de.Kind == domain.KindStore {
		logger.Error("resolver failed", "op", op, "error", de)
	}
	return &Error{err: de}
}

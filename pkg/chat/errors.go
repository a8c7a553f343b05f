package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrClassification = errors.New("classification failed")
	ErrGeneration     = errors.New("generation failed")
)

func failure(kind, cause error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(kind, cause), msg, opts...)
}

// StatusOf maps an orchestrator error to an HTTP status.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrClassification), errors.Is(err, ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

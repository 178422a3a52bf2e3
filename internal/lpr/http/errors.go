package http

import (
	"errors"
	"net/http"

	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/domain"
	"github.com/mochizuki1122m/shodo-lpr/internal/lpr/service"
	"github.com/mochizuki1122m/shodo-lpr/pkg/jwtx"
	"github.com/mochizuki1122m/shodo-lpr/pkg/lprsdk"
)

// writeServiceError renders a service-layer failure as the wire envelope.
// Classified denials keep their kind and status; validation sentinels map
// to 400; anything else is a 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	var authErr *domain.AuthError
	switch {
	case errors.As(err, &authErr):
		e := lprsdk.NewAPIError(authErr.Kind.HTTPStatus(), string(authErr.Kind), authErr.Message)
		e.RetryAfter = authErr.RetryAfter
		e.WriteError(w)
	case errors.Is(err, service.ErrMissingSubject),
		errors.Is(err, service.ErrMissingService),
		errors.Is(err, service.ErrNoScopes),
		errors.Is(err, service.ErrMissingJTI),
		errors.Is(err, jwtx.ErrInvalidScope):
		lprsdk.NewAPIError(http.StatusBadRequest, lprsdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
	default:
		lprsdk.ErrServerError.WriteError(w)
	}
}

// writeKind renders a verification denial as the wire envelope.
func writeKind(w http.ResponseWriter, kind domain.Kind, message string) {
	lprsdk.NewAPIError(kind.HTTPStatus(), string(kind), message).WriteError(w)
}

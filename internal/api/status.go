package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/product-catalog/internal/core/domain"
)

// ResolveStatus maps an error to a status code and a client-safe message.
// Both the HTTP error handler and the message-pattern server use it.
func ResolveStatus(err error) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "missing authentication claims"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrRemoteNotFound):
		return http.StatusBadGateway, "referenced user not found"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusBadGateway, "user service unavailable"
	}

	return http.StatusInternalServerError, "internal server error"
}

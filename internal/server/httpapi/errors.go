package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/didkeeper/internal/server/services"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidDID),
		errors.Is(err, services.ErrTransactionNeeded),
		errors.Is(err, services.ErrInvalidCampaign):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrChallengeInvalid),
		errors.Is(err, services.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDIDMismatch):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every error as {"detail": ...}. Unexpected errors are
// logged and hidden from the caller.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code   int
		detail string
		he     *echo.HTTPError
	)
	if errors.As(err, &he) {
		code = he.Code
		detail = http.StatusText(code)
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
	} else {
		code = statusFor(err)
		detail = err.Error()
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		detail = "Internal server error"
	}

	if rerr := c.JSON(code, errorResponse{Detail: detail}); rerr != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", rerr)
	}
}

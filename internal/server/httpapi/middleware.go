package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/server/auth"
	"github.com/labstack/echo/v4"
)

// claimsKey is where echo-jwt leaves the session claims.
const claimsKey = "user"

func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Response().Status)
		s.metrics.RequestDuration.WithLabelValues(c.Request().Method, route, status).Observe(time.Since(start).Seconds())
		s.logger.Debug(c.Request().Context(), "request",
			"method", c.Request().Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
		)
		return nil
	}
}

func (s *Server) parseToken(_ echo.Context, token string) (any, error) {
	return s.auth.ParseToken(token)
}

func (s *Server) unauthorized(c echo.Context, err error) error {
	detail := "Invalid or expired token"
	if c.Request().Header.Get(echo.HeaderAuthorization) == "" && c.QueryParam("token") == "" {
		detail = "Not authenticated"
	}
	s.logger.Debug(c.Request().Context(), "session rejected", "path", c.Path(), "error", err)
	return c.JSON(http.StatusUnauthorized, errorResponse{Detail: detail})
}

func sessionClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

package server

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"discord-archive/database"

	"github.com/labstack/echo/v4"
)

// APIKeyMiddleware guards mutating routes with the X-API-Key header when an api key is configured.
func (s *Server) APIKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.cfg.APIKey == "" {
			return next(c)
		}
		key := c.Request().Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
		}
		return next(c)
	}
}

// errorResponse maps store errors onto HTTP statuses. Unexpected errors are logged and hidden.
func errorResponse(c echo.Context, err error) error {
	resp := make(map[string]any)
	switch {
	case errors.Is(err, database.ErrNotFound):
		resp["error"] = err.Error()
		return c.JSON(http.StatusNotFound, resp)
	case errors.Is(err, database.ErrInvalidField):
		resp["error"] = err.Error()
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, database.ErrIntegrity):
		resp["error"] = err.Error()
		return c.JSON(http.StatusConflict, resp)
	}
	log.Printf("Error handling %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	resp["error"] = "internal server error"
	return c.JSON(http.StatusInternalServerError, resp)
}

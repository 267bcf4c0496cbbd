package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) HandlerChannelStats(c echo.Context) error {
	res, err := s.stats.Channels(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) HandlerUserStats(c echo.Context) error {
	res, err := s.stats.Users(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) HandlerMessageStats(c echo.Context) error {
	res, err := s.stats.Totals(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) HandlerMessageTimeline(c echo.Context) error {
	res, err := s.stats.Timeline(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) HandlerRecentMessages(c echo.Context) error {
	res, err := s.stats.Recent(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) HandlerAverageMessage(c echo.Context) error {
	res, err := s.stats.Average(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

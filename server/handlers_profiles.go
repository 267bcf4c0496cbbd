package server

import (
	"net/http"

	"discord-archive/models"

	"github.com/labstack/echo/v4"
)

func (s *Server) HandlerUserProfile(c echo.Context) error {
	profile, err := s.db.GetUserProfile(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) HandlerPatchUser(c echo.Context) error {
	var patch models.UserPatch
	if err := decodeAllowed(c.Request().Body, userFields, &patch); err != nil {
		return errorResponse(c, err)
	}
	profile, err := s.db.PatchUser(c.Request().Context(), c.Param("name"), patch)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) HandlerUserMessageSums(c echo.Context) error {
	sums, err := s.db.UserMessageSums(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, sums)
}

func (s *Server) HandlerChannelProfile(c echo.Context) error {
	profile, err := s.db.GetChannelProfile(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

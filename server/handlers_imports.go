package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type startImportRequest struct {
	RequesterID string `json:"requester_id"`
	GuildID     string `json:"guild_id"`
	Date        string `json:"date"`
	Timezone    string `json:"timezone"`
}

func (s *Server) HandlerStartImport(c echo.Context) error {
	resp := make(map[string]any)
	if s.importer == nil {
		resp["error"] = "imports need a connected chat session"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	var body startImportRequest
	if err := c.Bind(&body); err != nil {
		resp["error"] = "malformed body"
		return c.JSON(http.StatusBadRequest, resp)
	}
	if strings.TrimSpace(body.RequesterID) == "" || strings.TrimSpace(body.GuildID) == "" || body.Date == "" {
		resp["error"] = "requester_id, guild_id and date are required"
		return c.JSON(http.StatusBadRequest, resp)
	}

	task, err := s.importer.Start(c.Request().Context(), body.RequesterID, body.GuildID, body.Date, body.Timezone)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusAccepted, task)
}

func (s *Server) HandlerImportStatus(c echo.Context) error {
	task, err := s.db.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) HandlerListImports(c echo.Context) error {
	requester := strings.TrimSpace(c.QueryParam("requester"))
	if requester == "" {
		resp := make(map[string]any)
		resp["error"] = "requester is required"
		return c.JSON(http.StatusBadRequest, resp)
	}
	tasks, err := s.db.ListTasks(c.Request().Context(), requester)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	e.GET("/health", s.healthHandler)

	// Statistics
	e.GET("/stats/channels", s.HandlerChannelStats)
	e.GET("/stats/users", s.HandlerUserStats)
	e.GET("/stats/message-stats", s.HandlerMessageStats)
	e.GET("/stats/message-timeline", s.HandlerMessageTimeline)
	e.GET("/stats/recent-messages", s.HandlerRecentMessages)
	e.GET("/stats/average-message", s.HandlerAverageMessage)

	// Browsing
	e.GET("/database/messages", s.HandlerListMessages)
	e.GET("/database/messages/:id", s.HandlerMessageDetail)
	e.PUT("/database/messages/:id", s.HandlerUpdateMessage, s.APIKeyMiddleware)
	e.DELETE("/database/messages/:id", s.HandlerDeleteMessage, s.APIKeyMiddleware)
	e.GET("/database/filter-options", s.HandlerFilterOptions)
	e.GET("/database/export", s.HandlerExport, s.APIKeyMiddleware)

	// Imports
	e.POST("/database/imports", s.HandlerStartImport, s.APIKeyMiddleware)
	e.GET("/database/imports", s.HandlerListImports)
	e.GET("/database/imports/:id", s.HandlerImportStatus)

	// Profiles
	e.GET("/discorduser/:name", s.HandlerUserProfile)
	e.PATCH("/discorduser/:name", s.HandlerPatchUser, s.APIKeyMiddleware)
	e.GET("/user-messages-stats/:name", s.HandlerUserMessageSums)
	e.GET("/channelprofile/:name", s.HandlerChannelProfile)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	health := s.db.Health(c.Request().Context())
	if health["status"] != "up" {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

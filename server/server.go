package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"discord-archive/database"
	"discord-archive/models"
	"discord-archive/stats"
)

// Store is the record store surface used by the HTTP handlers.
type Store interface {
	Health(ctx context.Context) map[string]string
	ListMessages(ctx context.Context, f database.MessageFilter, limit, offset int) (int64, []models.MessageRow, error)
	GetMessageDetail(ctx context.Context, id string) (*models.MessageDetail, error)
	UpdateMessage(ctx context.Context, id string, patch models.MessagePatch) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	GetChannelProfile(ctx context.Context, name string) (*models.ChannelProfile, error)
	GetUserProfile(ctx context.Context, name string) (*models.UserProfile, error)
	PatchUser(ctx context.Context, name string, patch models.UserPatch) (*models.UserProfile, error)
	UserMessageSums(ctx context.Context, name string) (*models.UserMessageSums, error)
	GetTask(ctx context.Context, id string) (*models.ImportTask, error)
	ListTasks(ctx context.Context, requesterID string) ([]models.ImportTask, error)
	ExportTranscript(ctx context.Context, w io.Writer, excludeChannels []string) (int, error)
}

// ImportStarter starts history imports. It is nil when no chat session is available.
type ImportStarter interface {
	Start(ctx context.Context, requesterID, guildID, date, tz string) (*models.ImportTask, error)
}

type Server struct {
	cfg      models.ServerConfig
	db       Store
	stats    *stats.Engine
	importer ImportStarter
}

func NewServer(cfg models.ServerConfig, db Store, engine *stats.Engine, importer ImportStarter) *Server {
	return &Server{cfg: cfg, db: db, stats: engine, importer: importer}
}

// HTTPServer wraps the routes in an *http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-archive/bot"
	"discord-archive/database"
	"discord-archive/grpc"
	"discord-archive/handlers"
	"discord-archive/ingest"
	"discord-archive/models"
	"discord-archive/scanner"
	"discord-archive/server"
	"discord-archive/stats"
	"discord-archive/utils"

	"github.com/spf13/cobra"
)

// ServeCmd runs the HTTP API, the optional chat bot, the health service and the scheduler.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the archive service",
	Long: `Run the HTTP statistics API against the archive database.

When bot.token is set the bot also connects to the gateway, records
messages as they arrive and accepts /archive_date imports. When grpc.addr
is set a grpc.health.v1 service reports whether the database answers.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addConfigFlag(ServeCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadStore()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := stats.NewEngine(db, cfg.Stats)

	b, importer, err := startBot(cfg, db, engine)
	if err != nil {
		return err
	}

	// A nil *scanner.Importer must stay a nil interface for the HTTP layer.
	var starter server.ImportStarter
	if importer != nil {
		starter = importer
	}
	httpServer := server.NewServer(cfg.Server, db, engine, starter).HTTPServer()
	serveErr := make(chan error, 2)
	go func() {
		log.Printf("HTTP API listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var health *grpc.Server
	if cfg.GRPC.Addr != "" {
		health = grpc.NewServer(db, cfg.GRPC.HealthInterval)
		go func() {
			if err := health.ListenAndServe(cfg.GRPC.Addr); err != nil {
				serveErr <- err
			}
		}()
	}

	scheduler := bot.NewScheduler(db, cfg.Scheduler)
	schedErr := scheduler.Start()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
		if health != nil {
			health.Stop()
		}
		if schedErr == nil {
			scheduler.Stop()
		}
		if b != nil {
			b.Stop()
		}
		if importer != nil {
			importer.Wait()
		}
	}
	if schedErr != nil {
		stop()
		return schedErr
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer signal.Stop(sc)
	return waitAndShutdown(sc, serveErr, stop)
}

// waitAndShutdown blocks until a signal arrives or a server fails, then runs stop.
// A server failure is returned after stop so deferred cleanup still happens.
func waitAndShutdown(sig <-chan os.Signal, serveErr <-chan error, stop func()) error {
	var err error
	select {
	case s := <-sig:
		log.Printf("Received %v, shutting down...", s)
	case err = <-serveErr:
		log.Printf("Server failed, shutting down: %v", err)
	}
	stop()
	return err
}

// startBot connects the chat bot when a token is configured.
func startBot(cfg *models.Config, db *database.DB, engine *stats.Engine) (*bot.Bot, *scanner.Importer, error) {
	if cfg.Bot.Token == "" {
		log.Println("No bot token configured, running the HTTP API only.")
		return nil, nil, nil
	}

	b, err := bot.NewBot(cfg.Bot)
	if err != nil {
		return nil, nil, err
	}
	recorder := ingest.NewRecorder(db, ingest.SessionSource{Session: b.Session})
	importer := scanner.NewImporter(b.Session, recorder, db, cfg.Scheduler.TaskRetention)
	h := handlers.New(recorder, engine, importer, db, utils.NewAuth(cfg.Bot))

	if err := b.Start(h.Register); err != nil {
		return nil, nil, err
	}
	return b, importer, nil
}

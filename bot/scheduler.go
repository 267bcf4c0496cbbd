package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"discord-archive/database"
	"discord-archive/models"
	"discord-archive/utils"

	"github.com/robfig/cron/v3"
)

// Maintenance is the storage work run on a schedule.
type Maintenance interface {
	RecomputeAllTotals(ctx context.Context) (database.RecomputeReport, error)
	ExpireTasks(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	c     *cron.Cron
	store Maintenance
	cfg   models.SchedulerConfig
}

func NewScheduler(store Maintenance, cfg models.SchedulerConfig) *Scheduler {
	return &Scheduler{c: cron.New(), store: store, cfg: cfg}
}

// Start schedules the configured jobs. Empty cron specs disable their job.
func (s *Scheduler) Start() error {
	log.Println("Initializing scheduler...")
	if s.cfg.TotalsCron != "" {
		if _, err := s.c.AddFunc(s.cfg.TotalsCron, s.recomputeTotals); err != nil {
			return fmt.Errorf("schedule totals job %q: %w", s.cfg.TotalsCron, err)
		}
	}
	if s.cfg.TaskCleanupCron != "" {
		if _, err := s.c.AddFunc(s.cfg.TaskCleanupCron, s.expireTasks); err != nil {
			return fmt.Errorf("schedule task cleanup job %q: %w", s.cfg.TaskCleanupCron, err)
		}
	}
	s.c.Start()
	log.Printf("Scheduler started with %d job(s).", len(s.c.Entries()))

	if s.cfg.TotalsAtStartup {
		go s.recomputeTotals()
	} else {
		log.Println("Skipping totals recompute on startup as per configuration.")
	}
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) recomputeTotals() {
	report, err := s.store.RecomputeAllTotals(context.Background())
	if err != nil {
		utils.Error("Scheduler", "RecomputeTotals", err.Error())
		return
	}
	details := fmt.Sprintf("channels=%d users=%d failed=%d", report.Channels, report.Users, report.Failed)
	if report.Failed > 0 {
		utils.Warn("Scheduler", "RecomputeTotals", details)
		return
	}
	utils.Info("Scheduler", "RecomputeTotals", details)
}

func (s *Scheduler) expireTasks() {
	if _, err := s.store.ExpireTasks(context.Background(), time.Now()); err != nil {
		utils.Error("Scheduler", "ExpireTasks", err.Error())
	}
}

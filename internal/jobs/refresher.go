package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/service"
)

// Refresher keeps the shared cache warm. It re-runs the rankings, events and
// player queries on an interval under a service session, so the decay-window
// derived event statuses stay current without a user request paying the
// network cost.
type Refresher struct {
	scheduler gocron.Scheduler
	rankings  *service.RankingsService
	events    *service.EventService
	players   *service.PlayerService
	token     string
	interval  time.Duration
	logger    *slog.Logger
}

// NewRefresher builds the scheduler. An empty service token disables the
// refresher: without one the upstream would only serve anonymous rows.
func NewRefresher(
	rankings *service.RankingsService,
	events *service.EventService,
	players *service.PlayerService,
	token string,
	interval time.Duration,
	logger *slog.Logger,
) (*Refresher, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Refresher{
		scheduler: s,
		rankings:  rankings,
		events:    events,
		players:   players,
		token:     token,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start registers the refresh job and begins the schedule.
func (r *Refresher) Start() error {
	if r.token == "" {
		r.logger.Info("cache refresher disabled, no service token configured")
		return nil
	}
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}
	r.scheduler.Start()
	r.logger.Info("cache refresher started", "interval", r.interval.String())
	return nil
}

// Stop shuts the scheduler down, waiting for a running refresh to finish.
func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctx = auth.WithSession(ctx, &auth.Session{
		User:  &domain.User{ID: "refresher", Role: auth.RoleServiceRole},
		Token: r.token,
	})

	if _, err := r.rankings.Leaderboard(ctx, "", 0); err != nil {
		r.logger.Warn("rankings refresh failed", "error", err)
	}
	if _, err := r.events.List(ctx, 25); err != nil {
		r.logger.Warn("events refresh failed", "error", err)
	}
	if _, err := r.players.Refetch(ctx, 200); err != nil {
		r.logger.Warn("players refresh failed", "error", err)
	}
}

package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gitquest-dev/gitquest/internal/api"
	"github.com/gitquest-dev/gitquest/internal/app/progression"
	"github.com/gitquest-dev/gitquest/internal/health"
	"github.com/gitquest-dev/gitquest/internal/infra/sqlite"
)

// Daemon is the gitquest runtime. It wires the store and the progression
// services together and owns the HTTP server lifecycle.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server

	Snapshots  *progression.SnapshotService
	Challenges *progression.ChallengeService
	Badges     *progression.BadgeService
	Sync       *progression.SyncService
	Health     *health.Checker

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(gitquestHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{Config: cfg, DB: db}

	floors := progression.TargetFloors{
		Commits: cfg.Challenges.MinCommitsTarget,
		Prs:     cfg.Challenges.MinPrsTarget,
		Reviews: cfg.Challenges.MinReviewsTarget,
		Issues:  cfg.Challenges.MinIssuesTarget,
	}

	d.Snapshots = progression.NewSnapshotService(db)
	d.Challenges = progression.NewChallengeService(db, floors)
	d.Badges = progression.NewBadgeService(db)
	d.Sync = progression.NewSyncService(db, d.Snapshots, d.Challenges, d.Badges)

	d.Health = health.NewChecker(db, gitquestHome())

	srv := api.NewServer(db, d.Snapshots, d.Challenges, d.Badges, d.Sync)
	srv.SetNearCompletionPct(cfg.Badges.NearCompletionPct)
	srv.SetHealthChecker(d.Health)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go d.Health.Run(ctx)

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("gitquest serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

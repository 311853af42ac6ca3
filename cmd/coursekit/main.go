// SPDX-License-Identifier: MIT

// Command coursekit runs the course-catalog state core with simulated
// collaborators: it signs in, fetches the catalog, purchases a course, and
// plays its video, persisting state across restarts through the configured
// backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/coursekit/coursekit/internal/config"
	"github.com/coursekit/coursekit/internal/course"
	cklog "github.com/coursekit/coursekit/internal/log"
	"github.com/coursekit/coursekit/internal/persistence"
	"github.com/coursekit/coursekit/internal/player"
	"github.com/coursekit/coursekit/internal/store"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	email := flag.String("email", "demo@example.com", "email for the demo session")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	cklog.Configure(cklog.Config{
		Level:   cfg.LogLevel,
		Service: "coursekit",
		Version: version,
	})
	logger := cklog.WithComponent("main")

	kv, err := openStore(cfg)
	if err != nil {
		logger.Error().Err(err).Str(cklog.FieldBackend, cfg.Store).Msg("failed to open store")
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()
	logger.Info().Str(cklog.FieldBackend, cfg.Store).Msg("persistence ready")

	c := store.New(store.Options{
		Bridge:       persistence.NewBridge(kv),
		Source:       course.NewSimSource(cfg.FetchDelay),
		Payments:     course.NewSimGateway(cfg.PurchaseDelay, cfg.PurchaseSuccessRate),
		RecoverDelay: cfg.RecoverDelay,
	})
	defer c.Close()

	monitor := player.NewMonitor(c, player.Options{CaptureInterval: cfg.CaptureInterval})
	defer monitor.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsListen != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.MetricsListen) })
	}
	g.Go(func() error {
		defer stop() // demo done: shut the metrics listener down too
		return runDemo(gctx, c, monitor, *email)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

// openStore builds the configured persistence backend.
func openStore(cfg config.Config) (persistence.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return persistence.NewMemoryStore(), nil
	case config.StoreBadger:
		return persistence.OpenBadger(filepath.Join(cfg.DataDir, "badger"))
	case config.StoreFile:
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, err
		}
		return persistence.OpenFile(filepath.Join(cfg.DataDir, "state.json"))
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return nil, err
		}
		return persistence.OpenSQLite(filepath.Join(cfg.DataDir, "state.db"))
	case config.StoreRedis:
		return persistence.OpenRedis(persistence.RedisConfig{Addr: cfg.RedisAddr})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// runDemo exercises the full intent surface once: login, catalog fetch,
// a guarded purchase, and a short playback session.
func runDemo(ctx context.Context, c *store.Container, monitor *player.Monitor, email string) error {
	logger := cklog.WithComponent("demo")

	if c.State().SignedIn() {
		logger.Info().Msg("session restored from persistence")
	} else {
		c.Dispatch(store.Login{Email: email})
	}

	c.FetchCatalog(ctx)
	if err := waitFor(ctx, c, func(s store.Snapshot) bool {
		return !s.Catalog.Loading && (len(s.Catalog.Items) > 0 || s.Catalog.Error != "")
	}); err != nil {
		return err
	}
	snap := c.State()
	if snap.Catalog.Error != "" {
		return fmt.Errorf("catalog fetch failed: %s", snap.Catalog.Error)
	}

	// Purchase the first course not yet owned, guarded so a repeated demo
	// run cannot start two purchases for the same id.
	inflight := store.NewInFlight()
	for _, item := range snap.Catalog.Items {
		if snap.IsPurchased(item.ID) || !inflight.TryBegin(item.ID) {
			continue
		}
		id := item.ID
		c.Purchase(ctx, id)
		err := waitFor(ctx, c, func(s store.Snapshot) bool {
			return s.IsPurchased(id) || s.Catalog.Error != ""
		})
		inflight.End(id)
		if err != nil {
			return err
		}
		break
	}

	snap = c.State()
	if snap.Catalog.Error != "" {
		logger.Warn().Str(cklog.FieldReason, snap.Catalog.Error).Msg("purchase declined; waiting for recovery")
		if err := waitFor(ctx, c, func(s store.Snapshot) bool {
			return s.Catalog.Error == ""
		}); err != nil {
			return err
		}
		return nil
	}

	// Watch the purchased course for a few seconds, then close so the
	// offset is persisted for the next run.
	courseID := snap.Catalog.PurchasedIDs[0]
	surface := newSimSurface(200 * time.Millisecond)
	monitor.Open(surface, courseID)
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
	}
	monitor.Close()

	logger.Info().
		Str(cklog.FieldCourseID, courseID).
		Float64(cklog.FieldPosition, c.State().Playback.PlaybackPosition).
		Msg("demo session finished")
	return nil
}

// waitFor blocks until cond holds for a committed snapshot or ctx ends.
func waitFor(ctx context.Context, c *store.Container, cond func(store.Snapshot) bool) error {
	ch := make(chan store.Snapshot, 16)
	cancel := c.Subscribe(func(s store.Snapshot) {
		select {
		case ch <- s:
		default:
		}
	})
	defer cancel()

	if cond(c.State()) {
		return nil
	}
	for {
		select {
		case s := <-ch:
			if cond(s) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

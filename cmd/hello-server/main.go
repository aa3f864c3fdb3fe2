package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/hello-server/internal/api"
	"github.com/baharkarakas/hello-server/internal/api/handlers"
	"github.com/baharkarakas/hello-server/internal/auth"
	"github.com/baharkarakas/hello-server/internal/config"
	"github.com/baharkarakas/hello-server/internal/db"
	"github.com/baharkarakas/hello-server/internal/logger"
	"github.com/baharkarakas/hello-server/internal/metrics"
	repo "github.com/baharkarakas/hello-server/internal/repository"
	"github.com/baharkarakas/hello-server/internal/repository/memory"
	"github.com/baharkarakas/hello-server/internal/repository/postgres"
	"github.com/baharkarakas/hello-server/internal/server"
	"github.com/baharkarakas/hello-server/internal/services"
	"github.com/baharkarakas/hello-server/internal/worker"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "hello-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("using config",
		"addr", cfg.Address(),
		"pool", cfg.PoolSize,
		"limit", cfg.RequestLimit,
		"admin", cfg.AdminAddress(),
	)

	// validated before anything else is started
	pool, err := worker.New(cfg.PoolSize, worker.WithName("connections"), worker.WithLogger(log))
	if err != nil {
		return err
	}
	defer pool.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var logs repo.AccessLogs = memory.NewAccessLogs(1024)
	if cfg.DatabaseURL != "" {
		dbPool, err := db.NewPool(ctx, cfg.DatabaseURL, 10)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, dbPool); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		logs = postgres.NewRepositories(dbPool).AccessLogs
	}
	accessLogs := services.NewAccessLogService(logs, pool, log)

	metrics.Init()

	site := handlers.NewSite(cfg.DocRoot, cfg.SleepDelay)
	connHandler := api.NewConnHandler(api.NewSiteRouter(site, accessLogs.Record), cfg.ReadTimeout, log)

	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return err
	}
	srv := server.New(ln, pool, connHandler, cfg.RequestLimit, log)

	tm := auth.NewTokenManager(cfg.JWTIssuer, cfg.JWTSecret, 15*time.Minute, 24*time.Hour)
	adminSrv := &http.Server{
		Addr: cfg.AdminAddress(),
		Handler: api.NewAdminRouter(api.AdminDeps{
			TM: tm,
			Admin: &handlers.AdminHandler{
				TM:           tm,
				PasswordHash: cfg.AdminPasswordHash,
				Pool:         pool,
				Logs:         accessLogs,
			},
			RateRPS: cfg.RateRPS,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// returning ends the process once the connection limit is reached
		defer stop()
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		log.Info("admin server starting", "addr", adminSrv.Addr)
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return adminSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	fmt.Println("Shutting down.")
	log.Info("draining worker pool", "queued", pool.Stats().Queued, "busy", pool.Stats().Busy)
	pool.Shutdown()
	return err
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/auth"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/events"
	"github.com/claude/liftlog/internal/generate"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/sqlite"
	"github.com/claude/liftlog/internal/workout"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// store is what the server needs from either database backend.
type store interface {
	workout.Store
	server.UserResolver
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("liftlog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, closeDB, err := openStore(ctx, cfg.Database, *migrateOnly, log)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if db == nil {
		log.Info("migrate-only: exiting")
		return
	}
	defer closeDB()

	// Collaborators
	var gen workout.Generator
	if cfg.Generator.Token != "" {
		gen = generate.NewClient(cfg.Generator.APIURL, cfg.Generator.Model, cfg.Generator.Token, cfg.Generator.Timeout)
		log.Info("exercise generator enabled", "model", cfg.Generator.Model)
	}
	pub := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if c, ok := pub.(io.Closer); ok {
		defer c.Close()
		log.Info("publishing workout events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	svc := workout.NewService(db, gen, pub, workout.Options{
		StrictTransitions: cfg.Workouts.StrictTransitions,
		RecomputeMetrics:  cfg.Workouts.RecomputeMetrics,
	}, log)
	users := server.NewUserCache(db, 10*time.Minute)

	// Identity and listener: tsnet or plain HTTP
	var listener net.Listener
	var identity func(http.Handler) http.Handler

	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		identity = server.BearerIdentity(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.JWTIssuer}, users, log)
	case config.AuthModeDev:
		identity = server.DevIdentity
	}

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		if cfg.Auth.Mode == config.AuthModeTailscale {
			lc, err := tsServer.LocalClient()
			if err != nil {
				log.Error("tsnet local client failed", "error", err)
				os.Exit(1)
			}
			identity = server.TailscaleIdentity(lc, users, log)
		}

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname, "auth", cfg.Auth.Mode)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "auth", cfg.Auth.Mode)
	}

	srv := server.New(svc, identity, log)
	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openStore opens the configured backend. Postgres runs migrations first;
// with migrateOnly set it returns a nil store once they are applied.
func openStore(ctx context.Context, cfg config.DatabaseConfig, migrateOnly bool, log *slog.Logger) (store, func(), error) {
	if cfg.Driver == "sqlite" {
		if migrateOnly {
			return nil, nil, nil
		}
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database opened", "driver", "sqlite", "path", cfg.Path)
		return s, func() { s.Close() }, nil
	}

	dsn := cfg.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")
	if migrateOnly {
		return nil, nil, nil
	}

	db, err := storage.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	log.Info("database connected", "driver", "postgres")
	return db, db.Close, nil
}

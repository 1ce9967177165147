package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/workouthub/internal/config"
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/builtin"
	"github.com/claude/workouthub/internal/mcp"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/server"
	"github.com/claude/workouthub/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("migrations", "migrations", "directory holding the conversion log migrations")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	log.Info("workouthub starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())

	policy := roundtrip.DefaultPolicy()
	if cfg.Conversion.TolerancePolicy != "" {
		policy, err = roundtrip.LoadPolicy(cfg.Conversion.TolerancePolicy)
		if err != nil {
			log.Error("failed to load tolerance policy", "error", err)
			os.Exit(1)
		}
		log.Info("tolerance policy loaded", "path", cfg.Conversion.TolerancePolicy, "fields", len(policy))
	}

	// Conversion log (optional)
	var (
		logs      server.ConversionLog
		logReader mcp.LogReader
	)
	if cfg.Database.Enabled {
		dsn := cfg.Database.DSN()
		version, err := storage.RunMigrations(dsn, *migrationsPath)
		if err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied", "version", version)

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(context.Background(), dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logs, logReader = db, db
		log.Info("database connected")
	} else if *migrateOnly {
		log.Error("migrate-only requires database.enabled")
		os.Exit(1)
	} else {
		log.Info("conversion log disabled")
	}

	opts := ingest.Options{DefaultSport: cfg.Conversion.Sport(), Now: time.Now}
	registry := builtin.Registry(opts, log)

	// Create server
	srv := server.New(registry, logs, policy, cfg.Auth.APIKey, log)
	mcpSrv := mcp.New(mcp.NewLocal(registry, policy, logReader), Version, log)
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

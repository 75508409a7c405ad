// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

// Command stubapi runs the in-memory course-catalog backend for local
// development. It seeds a default admin account and two sample courses so a
// freshly started instance is immediately usable.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load .env overrides, if present.
//  3. Wire the in-memory server and seed defaults.
//  4. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/asharvi/admin-core/internal/platform/constants"
	"github.com/asharvi/admin-core/internal/stubapi"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	secret := flag.String("secret", "", "token signing secret (default: development secret)")
	flag.Parse()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Asharvi] stub_backend_initializing")

	// ── 2. Environment ─────────────────────────────────────────────────────
	// A missing .env is not an error; shell environment still applies.
	if err := godotenv.Load(); err == nil {
		log.Info("dotenv_loaded")
	}

	// ── 3. Server Wiring ───────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := stubapi.NewServer(ctx, stubapi.Options{
		Addr:        *addr,
		Secret:      []byte(*secret),
		Log:         log,
		Development: true,
	})
	if err := server.SeedDefaults(); err != nil {
		log.Error("startup failure",
			slog.String("context", "seed defaults"),
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	log.Info("stub_backend_ready",
		slog.String("addr", *addr),
		slog.String("admin_email", stubapi.DefaultAdminEmail),
	)

	// ── 4. Graceful Shutdown ───────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/kitlend/internal/config"
	"github.com/me/kitlend/internal/devserver"
	"github.com/me/kitlend/internal/logging"
)

func main() {
	cfg := config.DefaultDevServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.FixturesPath, "fixtures", cfg.FixturesPath, "YAML fixtures file (default: built-in demo accounts)")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HS256 signing secret")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of issued tokens")
	flag.StringVar(&cfg.LoginFormat, "login-format", cfg.LoginFormat, "Login response shape (text, json, envelope)")
	flag.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for fixture passwords")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	failMemberships := flag.Bool("fail-memberships", false, "Answer 503 on the borrowing-group membership endpoint")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	fixtures := devserver.DemoFixtures()
	if cfg.FixturesPath != "" {
		f, err := devserver.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fixtures: %v\n", err)
			os.Exit(1)
		}
		fixtures = f
	}
	logger.Info("fixtures loaded", "accounts", len(fixtures.Accounts), "memberships", len(fixtures.Memberships))

	srv, err := devserver.New(cfg, fixtures, logger, devserver.WithMembershipFailure(*failMemberships))
	if err != nil {
		fmt.Fprintf(os.Stderr, "create server: %v\n", err)
		os.Exit(1)
	}
	if *failMemberships {
		logger.Warn("membership endpoint will answer 503")
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "login_format", cfg.LoginFormat)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

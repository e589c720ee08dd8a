package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maplelane/questrade-go/internal/exporter"
	"github.com/maplelane/questrade-go/pkg/config"
	"github.com/maplelane/questrade-go/pkg/logger"
	"github.com/maplelane/questrade-go/pkg/secrets"
	"github.com/maplelane/questrade-go/questrade"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [questrade-exporter]...")

	// --- Resolve the refresh token (env or AWS Secrets Manager) ---
	refreshToken := cfg.RefreshToken
	var provider secrets.Provider
	if cfg.SecretID != "" {
		var err error
		provider, err = secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to init AWS provider", "error", err)
		}
		values, err := provider.GetSecret(ctx, cfg.SecretID)
		if err != nil {
			logg.Fatalw("failed to fetch refresh token secret", "error", err)
		}
		refreshToken = values["refresh_token"]
	}
	if refreshToken == "" {
		logg.Fatalw("no refresh token configured",
			"hint", "set QUESTRADE_REFRESH_TOKEN or QUESTRADE_SECRET_ID")
	}

	// Questrade rotates the refresh token on every exchange. Persist each
	// replacement synchronously from the hook: refreshes are serialized, so
	// the writes land in rotation order and the store keeps the newest token.
	persist := exporter.NewTokenPersister(logg.Desugar(), provider, cfg.SecretID)

	// --- Questrade client ---
	client := questrade.New(
		questrade.WithLogger(logg.Desugar()),
		questrade.OnSessionRefresh(persist),
	)

	if err := client.Authenticate(ctx, refreshToken, cfg.Practice); err != nil {
		logg.Fatalw("authentication failed", "error", err)
	}

	// --- Balance poller ---
	poller := exporter.NewPoller(logg.Desugar(), client, cfg.PollInterval, cfg.AccountCacheTTL)
	go poller.Start(ctx)

	// --- HTTP surface (health, metrics, read-only API) ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h := exporter.NewHandler(logg.Desugar(), client)
	exporter.RegisterRoutes(app, h)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logg.Errorw("http shutdown failed", "error", err)
	}
}

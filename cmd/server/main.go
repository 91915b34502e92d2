// Command server runs the labtrack sample management API.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, LABTRACK_CONFIG env, ./config.yaml, or
// /etc/labtrack/config.yaml), and LABTRACK_* environment overrides.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkranz/labtrack/pkg/auth"
	"github.com/mkranz/labtrack/pkg/auth/credentials"
	"github.com/mkranz/labtrack/pkg/auth/token"
	"github.com/mkranz/labtrack/pkg/config"
	"github.com/mkranz/labtrack/pkg/debug"
	"github.com/mkranz/labtrack/pkg/samples"
	"github.com/mkranz/labtrack/pkg/storage/memory"
	"github.com/mkranz/labtrack/pkg/storage/postgres"
	"github.com/mkranz/labtrack/pkg/transport"
	transporthttp "github.com/mkranz/labtrack/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	debug.Init(cfg.Observability.Debug, cfg.Observability.LogLevel)
	logger := slog.Default()

	// Select the sample store.
	var store transport.SampleStore
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		store = pg
		logger.Info("storage enabled", "type", "postgres")
	default:
		store = memory.New()
		logger.Info("storage enabled", "type", "memory")
	}
	defer store.Close()

	// Token service for issuing and verifying bearer tokens.
	tokens, err := token.New(token.Config{
		Secret:     cfg.Auth.Secret,
		Algorithm:  cfg.Auth.Algorithm,
		TTLMinutes: cfg.Auth.TokenTTLMinutes,
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// Credential store for the login endpoint.
	users := make([]credentials.User, 0, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		users = append(users, credentials.User{
			Username: u.Username,
			Password: u.Password,
			Subject:  u.Subject,
		})
	}
	creds := credentials.New(users)
	if len(users) == 0 {
		logger.Warn("no users configured, login will always fail")
	}

	svc, err := samples.New(store)
	if err != nil {
		return fmt.Errorf("creating sample service: %w", err)
	}

	adapter := transporthttp.NewAdapter(svc, creds, tokens, store, transporthttp.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		MaxBodySize: cfg.Server.MaxBodySize,
	})

	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{token.NewAuthenticator(tokens)},
		DefaultDecision: auth.No,
	}

	srv := transporthttp.NewServer(adapter, chain,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled, cfg.Observability.Metrics.Path),
		transporthttp.WithLogger(logger),
	)

	logger.Info("labtrack starting",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_ttl_minutes", cfg.Auth.TokenTTLMinutes,
		"users", len(users),
	)

	return srv.ListenAndServe()
}

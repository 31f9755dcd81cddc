package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Siellph/DimaTech-Ltd-test/config"
	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/cache"
	"github.com/Siellph/DimaTech-Ltd-test/internal/events"
	"github.com/Siellph/DimaTech-Ltd-test/internal/handlers"
	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
	"github.com/Siellph/DimaTech-Ltd-test/internal/middleware"
	"github.com/Siellph/DimaTech-Ltd-test/internal/routes"
	"github.com/Siellph/DimaTech-Ltd-test/internal/signature"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")

	return cmd
}

func runServe(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := cfg.RequireServe(); err != nil {
		return err
	}

	if migrate {
		if err := migrateSchema(db); err != nil {
			return err
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = p
	} else {
		slog.Warn("NATS_URL is not set, transaction events are disabled")
	}
	defer publisher.Close()

	rdb := config.ConnectRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	userCache := cache.NewUsers(rdb, cfg.RedisCachePrefix)

	store := ledger.NewStore(db)
	engine := ledger.NewEngine(store, publisher)
	issuer := auth.NewTokenIssuer(cfg.JWTSecretSalt, cfg.TokenTTL)
	h := handlers.New(store, engine, signature.NewVerifier(cfg.SecretKey), issuer, userCache)

	r := gin.Default()
	routes.SetupRoutes(r, h, middleware.AuthMiddleware(issuer, store, userCache))

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.BindAddr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

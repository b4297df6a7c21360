package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"connectrpc.com/connect"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/mochiyoru/internal/api"
	"github.com/mmynk/mochiyoru/internal/client"
	"github.com/mmynk/mochiyoru/internal/config"
	"github.com/mmynk/mochiyoru/internal/coordinator"
	"github.com/mmynk/mochiyoru/internal/middleware"
	"github.com/mmynk/mochiyoru/internal/pages"
	"github.com/mmynk/mochiyoru/internal/rpc"
	"github.com/mmynk/mochiyoru/internal/service"
	"github.com/mmynk/mochiyoru/internal/session"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Storage.Driver)

	groups := service.NewGroupService(store)
	items := service.NewItemService(store)

	mux := http.NewServeMux()
	api.NewHTTPHandler(groups, items).Register(mux)

	interceptors := connect.WithInterceptors(middleware.LoggingInterceptor())
	mux.Handle(rpc.NewGroupServiceHandler(groups, interceptors))
	mux.Handle(rpc.NewItemServiceHandler(items, interceptors))

	metrics := middleware.NewMetrics()
	mux.Handle("GET /metrics", metrics.Handler())

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	backend := client.New(apiBaseURL(cfg), nil)
	coord := coordinator.New(backend, coordinator.Options{
		DefaultGroupName: cfg.Pages.DefaultGroupName,
		MaxQuantity:      cfg.Pages.MaxQuantity,
	})
	pageHandler, err := pages.NewHandler(coord, sessions, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	pageHandler.Register(mux)

	handler := middleware.Chain(mux, metrics.Middleware, middleware.Logging, middleware.CORS)

	// h2c serves HTTP/2 without TLS for Connect clients.
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Server.Addr, "url", cfg.Server.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	opts := session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		TTL:        cfg.GetSessionTTL(),
		Secure:     cfg.Session.Secure,
		Dir:        cfg.Session.Dir,
	}

	if cfg.Session.Driver != "redis" {
		return session.NewCookieStore(opts), nil
	}

	rs := session.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr}), opts)
	if err := rs.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Session.RedisAddr, err)
	}
	slog.Info("Session store initialized", "driver", "redis", "addr", cfg.Session.RedisAddr)
	return rs, nil
}

// apiBaseURL is where the pages reach the JSON API; by default this server.
func apiBaseURL(cfg *config.Config) string {
	if cfg.Pages.APIBaseURL != "" {
		return cfg.Pages.APIBaseURL
	}
	if strings.HasPrefix(cfg.Server.Addr, ":") {
		return "http://localhost" + cfg.Server.Addr
	}
	return "http://" + cfg.Server.Addr
}

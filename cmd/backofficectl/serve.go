package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/gorouter"
	"github.com/recliq/go-backoffice/components/backoffice/httpapi"
)

type serveCmd struct {
	Addr string `help:"Override server.addr." placeholder:"ADDR"`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.sessionStore(ctx)
	if err != nil {
		return err
	}
	sessions, err := backoffice.NewSessionManager(backoffice.SessionManagerOptions{
		Store:  store,
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.SessionTTL,
	})
	if err != nil {
		return err
	}
	renderer, err := backoffice.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("backofficectl: templates: %w", err)
	}
	controller := backoffice.NewController(backoffice.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		Drawers:  sessions,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:        server.Router(),
		Controller:    controller,
		API:           httpapi.NewCommandExecutor(a.service, a.recorder),
		Charts:        a.service,
		Broadcast:     a.hook,
		Sessions:      sessions,
		Authenticator: backoffice.NewAuthenticator(cfg.Auth.Operators),
		BasePath:      cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("backofficectl: register routes: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", a.metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics listener stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(cfg.Server.Addr)
	}()
	a.logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("base_path", cfg.Server.BasePath).
		Str("source", cfg.Source.Driver).
		Str("sessions", cfg.Sessions.Driver).
		Int("tables", len(a.registry.Tables())).
		Msg("backoffice listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var errs []error
	if metricsServer != nil {
		errs = append(errs, metricsServer.Shutdown(shutdownCtx))
	}
	errs = append(errs, server.Shutdown(shutdownCtx))
	a.logger.Info().Msg("backoffice stopped")
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/pkg/activity"
	"github.com/recliq/go-backoffice/pkg/activity/usersink"
	"github.com/recliq/go-backoffice/pkg/config"
	"github.com/recliq/go-backoffice/pkg/recordsource/gormsource"
	"github.com/recliq/go-backoffice/pkg/recordsource/httpsource"
	"github.com/recliq/go-backoffice/pkg/sessionstore/redisstore"
	"github.com/recliq/go-backoffice/pkg/telemetry"
)

// cliViewer is the identity used by offline commands.
var cliViewer = backoffice.ViewerContext{UserID: "backofficectl", Name: "backofficectl", Roles: []string{"admin"}}

type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	log      *backoffice.ActionLog
	registry *backoffice.Registry
	service  *backoffice.Service
	metrics  *telemetry.Metrics
	recorder telemetry.Recorder
	hook     *backoffice.BroadcastHook
	closers  []func() error
}

func (g *Globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	a := &app{
		cfg:    cfg,
		logger: telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logOut),
		log:    backoffice.NewActionLog(),
		hook:   backoffice.NewBroadcastHook(),
	}

	sources, err := a.sources(ctx)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	registry, err := backoffice.NewDefaultRegistry(sources)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	if err := registry.ApplyHooks(); err != nil {
		return nil, errors.Join(err, a.Close())
	}
	if cfg.Tables.Manifest != "" {
		if _, err := registry.LoadManifestFile(cfg.Tables.Manifest); err != nil {
			return nil, errors.Join(err, a.Close())
		}
	}
	a.registry = registry

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.metrics = metrics
	a.recorder = telemetry.Multi{telemetry.NewLogRecorder(a.logger), metrics}

	a.service = backoffice.NewService(backoffice.Options{
		Registry:      registry,
		ActionHandler: a.log,
		Authorizer: backoffice.RoleAuthorizer{
			ViewRoles:   cfg.Auth.ViewRoles,
			ActionRoles: cfg.Auth.ActionRoles,
		},
		RefreshHook: a.hook,
		Telemetry:   a.recorder,
		ActivityHooks: activity.Hooks{
			usersink.Hook{Sink: logSink{logger: a.logger}},
		},
		ActivityConfig: activity.Config{Enabled: true},
		ChartCache:     backoffice.NewChartCache(cfg.Charts.CacheTTL),
		ChartOptions: backoffice.ChartOptions{
			Theme:      cfg.Charts.Theme,
			AssetsHost: cfg.Charts.AssetsHost,
		},
	})
	return a, nil
}

func (a *app) sources(ctx context.Context) (backoffice.Sources, error) {
	switch a.cfg.Source.Driver {
	case config.SourceSQLite:
		db, err := openSQLite(a.cfg.Source.SQLitePath)
		if err != nil {
			return backoffice.Sources{}, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		if err := gormsource.Migrate(ctx, db); err != nil {
			return backoffice.Sources{}, err
		}
		return gormsource.Sources(db, a.log)
	case config.SourceHTTP:
		client, err := httpsource.NewClient(httpsource.Config{
			BaseURL: a.cfg.Source.BaseURL,
			APIKey:  a.cfg.Source.APIKey,
		})
		if err != nil {
			return backoffice.Sources{}, err
		}
		return httpsource.Sources(client, a.log), nil
	}
	return backoffice.StaticSources(a.log), nil
}

func (a *app) sessionStore(ctx context.Context) (backoffice.SessionStore, error) {
	if a.cfg.Sessions.Driver != config.SessionsRedis {
		return backoffice.NewInMemorySessionStore(), nil
	}
	client, err := redisstore.NewClient(ctx, redisstore.Config{
		Addr:     a.cfg.Sessions.RedisAddr,
		Password: a.cfg.Sessions.RedisPassword,
		DB:       a.cfg.Sessions.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return redisstore.New(client, redisstore.Options{})
}

// Close releases databases and connections opened by the app.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("backofficectl: open sqlite %s: %w", path, err)
	}
	return db, nil
}

// logSink writes go-users activity records to the structured log.
type logSink struct {
	logger zerolog.Logger
}

func (s logSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.logger.Info().
		Str("verb", record.Verb).
		Str("object_type", record.ObjectType).
		Str("object_id", record.ObjectID).
		Str("channel", record.Channel).
		Fields(record.Data).
		Msg("activity")
	return nil
}

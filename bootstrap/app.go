// Package bootstrap wires configuration, adapters, services, and the
// HTTP server into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/adapters/clock"
	"github.com/artpar/scaffold/adapters/idgen"
	"github.com/artpar/scaffold/adapters/memory"
	"github.com/artpar/scaffold/adapters/messages"
	"github.com/artpar/scaffold/adapters/metrics"
	"github.com/artpar/scaffold/adapters/sqlite"
	"github.com/artpar/scaffold/app"
	"github.com/artpar/scaffold/config"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
	"github.com/artpar/scaffold/web"
)

// App is the assembled application.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	DB         *sqlite.DB
	Modules    *resource.Set
	Dispatcher *app.Dispatcher
	Media      *app.MediaService
	Search     *app.SearchService

	server *http.Server
	holder *config.Holder
}

// Options customizes application assembly.
type Options struct {
	// Gate overrides the authorization gate. Defaults to allow-all,
	// which suits local development only.
	Gate ports.Gate

	// Modules overrides the module set. Defaults to the demo modules.
	Modules *resource.Set
}

// New assembles an application from a loaded configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	catalog := messages.Defaults()
	if cfg.Messages.Path != "" {
		catalog, err = messages.Load(cfg.Messages.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load message catalog: %w", err)
		}
	}

	ids := idgen.UUID{}
	clk := clock.Real{}
	mediaStore := sqlite.NewMediaStore(db, ids, clk)

	gate := opts.Gate
	if gate == nil {
		logger.Warn().Msg("no authorization gate configured, allowing all actions")
		gate = memory.AllowAll()
	}

	modules := opts.Modules
	if modules == nil {
		modules, err = demoModules(ids, mediaStore)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("build demo modules: %w", err)
		}
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(prometheus.DefaultRegisterer)
	}

	targets := web.Targets{Prefix: "/modules"}

	dispatcher := app.NewDispatcher(app.DispatcherDeps{
		Gate:     gate,
		Targets:  targets,
		Messages: catalog,
		Metrics:  collector,
		Logger:   logger.With().Str("component", "dispatcher").Logger(),
	})
	mediaSvc := app.NewMediaService(app.MediaDeps{
		Store:    mediaStore,
		Gate:     gate,
		PageSize: cfg.Media.PageSize,
		Metrics:  collector,
		Logger:   logger.With().Str("component", "media").Logger(),
	})
	searchSvc := app.NewSearchService(app.SearchDeps{
		Store:      sqlite.NewSearchStore(db),
		MaxResults: cfg.Search.MaxResults,
		Metrics:    collector,
		Logger:     logger.With().Str("component", "search").Logger(),
	})

	handler := web.NewHandler(web.Deps{
		Dispatcher: dispatcher,
		Media:      mediaSvc,
		Search:     searchSvc,
		Modules:    modules,
		Logger:     logger.With().Str("component", "web").Logger(),
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Modules:    modules,
		Dispatcher: dispatcher,
		Media:      mediaSvc,
		Search:     searchSvc,
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler.Routes(metricsPath),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// NewWithHotReload assembles an application whose configuration reloads
// when the file changes. Only logging-independent settings take effect
// without a restart.
func NewWithHotReload(path string, opts Options) (*App, error) {
	probe := zerolog.New(os.Stderr).With().Timestamp().Logger()
	holder, err := config.NewHolder(path, probe)
	if err != nil {
		return nil, err
	}

	a, err := New(holder.Get(), opts)
	if err != nil {
		return nil, err
	}
	a.holder = holder

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config hot reload unavailable")
	}
	return a, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.server.Addr).Msg("server listening")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return a.Close()
}

// Close releases application resources.
func (a *App) Close() error {
	if a.holder != nil {
		a.holder.Stop()
	}
	return a.DB.Close()
}

// demoModules builds the development module set: a mutable "post"
// module with publish/archive custom actions, and a read-only "log"
// module.
func demoModules(ids ports.IDGenerator, media ports.MediaStore) (*resource.Set, error) {
	posts := memory.NewModule("post", ids, memory.WithDetachHandler(app.DetachFileHandler(media)))
	for _, action := range []struct {
		name  string
		state string
	}{
		{"publish", "published"},
		{"archive", "archived"},
	} {
		name, err := resource.Custom(action.name)
		if err != nil {
			return nil, err
		}
		state := action.state
		err = posts.Actions().Register(name, func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
			rec, ok := e.(*memory.Record)
			if !ok {
				return resource.Result{}, fmt.Errorf("unexpected entity type %T", e)
			}
			if rec.Fields == nil {
				rec.Fields = make(map[string]any)
			}
			rec.Fields["status"] = state
			return resource.Rendered(rec), nil
		})
		if err != nil {
			return nil, err
		}
	}

	logs := memory.NewModule("log", ids, memory.ReadOnly())
	return resource.NewSet(posts, logs)
}

func newLogger(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}

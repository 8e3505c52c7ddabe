// Package cli implements the laberaer command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dell121212/laberaer/internal/adapters/transfer"
	"github.com/dell121212/laberaer/internal/blob"
	"github.com/dell121212/laberaer/internal/config"
	"github.com/dell121212/laberaer/internal/core"
)

// App bundles the services a command runs against.
type App struct {
	Service  *core.Service
	Transfer *transfer.Service
	// Metrics is set when store metrics were requested in json format.
	Metrics *core.ExpvarMetricsRecorder
	// Registry is set when store metrics were requested in prom format.
	Registry *prometheus.Registry
}

// Close releases the persistence backends.
func (a *App) Close() error {
	if a == nil || a.Service == nil {
		return nil
	}
	return a.Service.Close()
}

// GlobalFlags are the persistent root flags handed to the loader.
type GlobalFlags struct {
	Trace   bool
	Metrics bool
	// MetricsFormat is "json" (expvar snapshot) or "prom" (text exposition).
	MetricsFormat string
	Stderr        io.Writer
}

// Loader builds the App for one command invocation.
type Loader func(ctx context.Context, flags GlobalFlags) (*App, error)

// EnvLoader reads the LABERAER_* environment and bootstraps against it.
func EnvLoader(ctx context.Context, flags GlobalFlags) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return Bootstrap(ctx, cfg, flags)
}

// Bootstrap opens the configured backends and blob store, hydrates the
// stores, seeds the default admin and signs in cfg.Actor.
func Bootstrap(ctx context.Context, cfg config.Config, flags GlobalFlags) (*App, error) {
	logger, err := core.NewConsoleLogger(flags.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	opts := []core.ServiceOption{core.WithLogger(logger)}
	if flags.Trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(flags.Stderr, 0)))
	}
	var (
		metrics  *core.ExpvarMetricsRecorder
		registry *prometheus.Registry
	)
	if flags.Metrics {
		switch flags.MetricsFormat {
		case "prom":
			registry = prometheus.NewRegistry()
			rec, err := core.NewPrometheusMetricsRecorder(registry)
			if err != nil {
				return nil, err
			}
			opts = append(opts, core.WithMetrics(rec))
		case "", "json":
			metrics = core.NewExpvarMetricsRecorder("")
			opts = append(opts, core.WithMetrics(metrics))
		default:
			return nil, fmt.Errorf("unknown metrics format %q", flags.MetricsFormat)
		}
	}

	backends, err := core.OpenBackends(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	svc := core.NewService(backends, opts...)
	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open blob store: %w", err), svc.Close())
	}
	app := &App{
		Service:  svc,
		Transfer: transfer.New(svc, blobs, transfer.WithURLExpiry(cfg.Blob.URLExpiry)),
		Metrics:  metrics,
		Registry: registry,
	}
	if err := svc.Load(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("load stores: %w", err), app.Close())
	}
	if _, err := svc.Actors.EnsureAdmin(ctx); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if _, err := svc.SignIn(cfg.Actor); err != nil {
		return nil, errors.Join(fmt.Errorf("sign in %s: %w", cfg.Actor, err), app.Close())
	}
	return app, nil
}

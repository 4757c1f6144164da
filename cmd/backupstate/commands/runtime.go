package commands

import (
	"context"
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/backupstate/internal/catalog"
	"git.home.luguber.info/inful/backupstate/internal/config"
	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/metrics"
	"git.home.luguber.info/inful/backupstate/internal/notify"
	"git.home.luguber.info/inful/backupstate/internal/observability"
	"git.home.luguber.info/inful/backupstate/internal/state"
	"git.home.luguber.info/inful/backupstate/internal/verify"
	"git.home.luguber.info/inful/backupstate/internal/version"
)

// runtime holds the collaborators built from configuration for one command.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *catalog.DB
	tables    catalog.TableSource
	store     *state.JSONStore
	registry  *prom.Registry
	recorder  metrics.Recorder
	publisher notify.Publisher
	shutdown  func(context.Context) error
}

type runtimeOptions struct {
	metrics bool
	notify  bool
}

// newRuntime opens the data store and snapshot store. A data store that
// cannot be opened is logged and treated as unavailable so that saves and
// verification still run.
func newRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		tables:    catalog.Static{},
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
	}

	if cfg.Tracing.Stdout {
		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName:    "backupstate",
			ServiceVersion: version.Version,
			UseStdout:      true,
		})
		if err != nil {
			return nil, err
		}
		rt.shutdown = shutdown
	}

	if cfg.Database.URL != "" {
		db, err := catalog.Open(ctx, cfg.Database.URL, cfg.Database.Schema)
		if err != nil {
			logger.Warn("Data store unavailable", logfields.Error(err))
			rt.tables = catalog.Unavailable{Err: err}
		} else {
			rt.db = db
			rt.tables = db
		}
	}

	if opts.metrics {
		rt.registry = prom.NewRegistry()
		rt.recorder = metrics.NewPrometheusRecorder(rt.registry)
	}

	if opts.notify && cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject, logger)
		if err != nil {
			logger.Warn("Drift notifications disabled", logfields.Error(err))
		} else {
			rt.publisher = pub
		}
	}

	res := state.NewJSONStore(cfg.Storage.BaseDir,
		state.WithStateFile(cfg.Storage.StateFile),
		state.WithTableSource(rt.tables),
		state.WithArtifacts(cfg.Artifacts.Files),
		state.WithLogger(logger),
		state.WithRecorder(rt.recorder))
	if res.IsErr() {
		rt.Close(ctx)
		return nil, res.UnwrapErr()
	}
	rt.store = res.Unwrap()
	return rt, nil
}

func (rt *runtime) engine() *verify.Engine {
	return verify.NewEngine(rt.store, rt.tables,
		verify.WithLogger(rt.logger),
		verify.WithRecorder(rt.recorder),
		verify.WithPublisher(rt.publisher),
		verify.WithArtifactChecker(verify.OSArtifacts{Root: rt.cfg.Artifacts.Root}))
}

func (rt *runtime) metricsHandler() http.Handler {
	if rt.registry == nil {
		return nil
	}
	return metrics.HTTPHandler(rt.registry)
}

// Close releases the data store, publisher and tracer.
func (rt *runtime) Close(ctx context.Context) {
	if err := rt.publisher.Close(); err != nil {
		rt.logger.Warn("Failed to close notification publisher", logfields.Error(err))
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("Failed to close data store", logfields.Error(err))
		}
	}
	if rt.shutdown != nil {
		if err := rt.shutdown(ctx); err != nil {
			rt.logger.Warn("Failed to flush traces", logfields.Error(err))
		}
	}
}

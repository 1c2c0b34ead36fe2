package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/monitor"
	"github.com/vk/taskgridgo/internal/session"
	"github.com/vk/taskgridgo/internal/sink"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	registry   *capability.Registry
	promReg    *prometheus.Registry
	metrics    *monitor.Metrics
	sinks      sink.Multi
	tracker    *statusTracker
	natsSink   *sink.NATSSink
	httpServer *http.Server

	mu         sync.Mutex
	lastReport *session.Report
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and
// capability registry.
func NewApp(ctx context.Context, outW io.Writer, cfg *config.Config, modules ...capability.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := capability.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All capability modules registered.", "count", len(modules), "names", reg.Names())

	promReg := prometheus.NewRegistry()
	tracker := newStatusTracker()
	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		promReg:  promReg,
		metrics:  monitor.New(promReg),
		tracker:  tracker,
		sinks:    sink.Multi{sink.NewSlogSink(), tracker},
	}

	if cfg.NATSURL != "" {
		ns, err := sink.NewNATSSink(ctx, cfg.NATSURL, cfg.ProgressSubject)
		if err != nil {
			return nil, err
		}
		a.natsSink = ns
		a.sinks = append(a.sinks, ns)
	}
	return a, nil
}

// Registry returns the application's capability registry. This is
// primarily for testing.
func (a *App) Registry() *capability.Registry {
	return a.registry
}

// Logger returns the application's isolated logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close releases the app's long-lived resources.
func (a *App) Close() error {
	if a.natsSink != nil {
		a.natsSink.Close()
	}
	return a.closeStatusServer()
}

func (a *App) setReport(r *session.Report) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastReport = r
}

func (a *App) report() *session.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastReport
}

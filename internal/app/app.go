package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/sheetcalc/internal/ctxlog"
	"github.com/specialistvlad/sheetcalc/internal/engine"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	engine  *engine.Engine
	metrics *Metrics

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. Extra engine options are applied after the ones
// derived from cfg. The engine logs through the logger of each call's
// context, see Context.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...engine.Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	engineOpts := []engine.Option{
		engine.WithEvaluatorName(cfg.Evaluator),
		engine.WithVariables(cfg.Vars),
	}
	eng, err := engine.New(append(engineOpts, opts...)...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Engine configured.", "evaluator", eng.Evaluator().Name(), "variables", len(cfg.Vars))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		engine:  eng,
		metrics: NewMetrics(),
	}, nil
}

// Context returns ctx carrying the application's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Metrics returns the application's collectors. This is primarily for testing.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

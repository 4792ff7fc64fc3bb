package app

import (
	"context"
	"fmt"
	"io"
)

// RunEval loads the snapshot at path, evaluates it and renders the records
// in the configured format.
func (a *App) RunEval(ctx context.Context, path string, stdin io.Reader) error {
	ctx = a.Context(ctx)
	a.logger.Debug("RunEval started.", "path", path)

	snapshot, err := LoadSnapshot(ctx, path, stdin)
	if err != nil {
		return err
	}

	records, err := a.engine.Evaluate(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	a.logger.Debug("Evaluation finished.", "cells", len(records))

	return Render(a.outW, records, a.config.Format)
}

// RunGraph loads the snapshot at path, evaluates it and renders the
// dependency report.
func (a *App) RunGraph(ctx context.Context, path string, stdin io.Reader) error {
	ctx = a.Context(ctx)
	a.logger.Debug("RunGraph started.", "path", path)

	snapshot, err := LoadSnapshot(ctx, path, stdin)
	if err != nil {
		return err
	}

	analysis, err := a.engine.Analyze(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if len(analysis.Circular) > 0 {
		a.logger.Warn("Circular references found.", "cells", analysis.Circular)
	}

	return RenderAnalysis(a.outW, analysis, a.config.Format)
}

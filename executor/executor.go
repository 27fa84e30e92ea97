// Package executor loads parsed histories into several databases in parallel
package executor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linehistory/database"
	"linehistory/history"
	"linehistory/models"
)

// TargetResult is the outcome of loading one target.
type TargetResult struct {
	Target   string
	ImportID string
	Rows     int64
	Err      error
}

// ExecutionResult represents the aggregated results of a parallel load
type ExecutionResult struct {
	Targets    []TargetResult // in workload order
	Rows       int64
	ErrorCount int
}

// LoadTargets connects to every target of the workload with at most
// workload.Workers connections open at once, migrates the chats table and
// inserts h. A failing target does not stop the others.
func LoadTargets(
	ctx context.Context,
	workload *models.Workload,
	dbConfig database.Config,
	h *history.History,
	log *zap.Logger,
) ExecutionResult {
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]TargetResult, len(workload.Targets))
	var mu sync.Mutex
	var total int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workload.Workers))

	for i, targetHost := range workload.Targets {
		g.Go(func() error {
			log.Info("Worker starting", zap.String("target", targetHost))

			res := loadTarget(ctx, dbConfig.ForTarget(targetHost), h, workload.BatchSize, log)
			res.Target = targetHost
			results[i] = res

			if res.Err != nil {
				log.Error("Load failed", zap.String("target", targetHost), zap.Error(res.Err))
				return nil
			}

			mu.Lock()
			total += res.Rows
			mu.Unlock()

			log.Info("Load finished",
				zap.String("target", targetHost),
				zap.String("import_id", res.ImportID),
				zap.Int64("rows", res.Rows))
			return nil
		})
	}

	// Workers never return errors; failures are collected per target
	_ = g.Wait()

	errorCount := 0
	for _, r := range results {
		if r.Err != nil {
			errorCount++
		}
	}
	if errorCount > 0 {
		log.Warn("Encountered errors during parallel load", zap.Int("errors", errorCount))
	}

	return ExecutionResult{
		Targets:    results,
		Rows:       total,
		ErrorCount: errorCount,
	}
}

func loadTarget(ctx context.Context, cfg database.Config, h *history.History, batchSize int, log *zap.Logger) TargetResult {
	if err := ctx.Err(); err != nil {
		return TargetResult{Err: err}
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return TargetResult{Err: fmt.Errorf("failed to connect to %s: %w", cfg, err)}
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database connection", zap.String("target", cfg.String()), zap.Error(err))
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return TargetResult{Err: fmt.Errorf("%s: %w", cfg, err)}
	}

	importID, rows, err := database.SaveHistory(ctx, db, h, batchSize)
	if err != nil {
		return TargetResult{ImportID: importID, Rows: rows, Err: fmt.Errorf("%s: %w", cfg, err)}
	}
	return TargetResult{ImportID: importID, Rows: rows}
}

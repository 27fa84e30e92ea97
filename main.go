package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linehistory/config"
	"linehistory/csv"
	"linehistory/history"
	"linehistory/logging"
	"linehistory/models"
)

var (
	logger       *zap.Logger
	verbose      bool
	envFile      string
	workloadPath string
	historyFile  string
)

var rootCmd = &cobra.Command{
	Use:   "linehistory",
	Short: "Generate, parse, search and export LINE chat histories",
	Long: `linehistory works with the text export of LINE chats.

It can generate benchmark fixtures, search an export by date or keyword,
render calendars of active days, and export chats to CSV or SQL databases.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if envFile != "" {
			config.LoadEnv(logger, envFile)
		} else {
			config.LoadEnv(logger)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Environment file (default: .env)")
	rootCmd.PersistentFlags().StringVarP(&workloadPath, "workload", "w", "", "Workload file (.json or .yaml)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadWorkload returns the workload named by --workload, or defaults.
func loadWorkload() (*models.Workload, error) {
	if workloadPath == "" {
		return &models.Workload{Workers: 4, BatchSize: 1000}, nil
	}
	workload, err := models.LoadWorkloadConfig(workloadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load workload: %w", err)
	}
	logger.Debug("Workload loaded", zap.String("path", workloadPath), zap.Int("targets", len(workload.Targets)))
	return workload, nil
}

// inputPath picks the history file: the flag, then the workload, then
// history.txt.
func inputPath(workload *models.Workload) string {
	switch {
	case historyFile != "":
		return historyFile
	case workload != nil && workload.Input != "":
		return workload.Input
	default:
		return "history.txt"
	}
}

// readHistory loads a LINE text export or a CSV written by export. Parse
// errors are logged and the readable part is kept.
func readHistory(path string) (*history.History, error) {
	startTime := time.Now()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		h, err := csv.ImportHistory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", path, err)
		}
		return h, nil
	}

	h, err := history.ParseFile(path)
	if h == nil {
		return nil, err
	}
	var parseErrs history.ParseErrors
	if errors.As(err, &parseErrs) {
		logger.Warn("History contains malformed lines", zap.Int("errors", len(parseErrs)))
		for _, e := range parseErrs {
			logger.Debug("Parse error", zap.Error(e))
		}
	}
	if h, err = history.IgnoreErrors(h, err); err != nil {
		return nil, err
	}

	logger.Info("History parsed",
		zap.String("path", path),
		zap.Int("days", h.Len()),
		zap.Int("chats", h.ChatCount()),
		zap.Duration("elapsed", time.Since(startTime)))
	return h, nil
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linehistory/config"
	"linehistory/csv"
	"linehistory/database"
	"linehistory/executor"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Insert a history into one or more databases",
	Long: `Parses a history and inserts every chat into the chats table of each
workload target in parallel. Without a workload the database from the
environment (DB_TYPE, DB_HOST, ...) is the only target.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

var queryFlags outputFlags

var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run a SQL query against the database and save the result as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuery,
}

func init() {
	loadCmd.Flags().StringVarP(&historyFile, "file", "f", "", "History export or CSV (default: workload input or history.txt)")
	queryFlags.register(queryCmd, "query_results")
}

func runLoad(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	logger.Info("Starting load", zap.Time("start", startTime))

	workload, err := loadWorkload()
	if err != nil {
		return err
	}
	dbConfig, err := config.DatabaseFromEnv()
	if err != nil {
		return err
	}
	if len(workload.Targets) == 0 {
		target := dbConfig.Host
		if dbConfig.Type == "sqlite" {
			target = dbConfig.Database
		}
		workload.Targets = []string{target}
	}

	h, err := readHistory(inputPath(workload))
	if err != nil {
		return err
	}

	result := executor.LoadTargets(cmd.Context(), workload, dbConfig, h, logger)
	for _, r := range result.Targets {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", r.Target, r.Rows, status)
	}

	logger.Info("Load completed",
		zap.Int("targets", len(result.Targets)),
		zap.Int64("rows", result.Rows),
		zap.Int("errors", result.ErrorCount),
		zap.Duration("elapsed", time.Since(startTime)))

	if result.ErrorCount == len(result.Targets) {
		return fmt.Errorf("all %d targets failed", result.ErrorCount)
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	workload, err := loadWorkload()
	if err != nil {
		return err
	}
	query := workload.Query
	if len(args) == 1 {
		query = args[0]
	}
	if query == "" {
		return fmt.Errorf("SQL query is required, pass it as an argument or set query in the workload")
	}

	dbConfig, err := config.DatabaseFromEnv()
	if err != nil {
		return err
	}

	logger.Info("Connecting to database", zap.Stringer("db", dbConfig))
	db, err := database.Connect(dbConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("Error closing database connection", zap.Error(err))
		}
	}()

	logger.Info("Executing query", zap.String("query", query))
	result, err := database.ExecuteRawQuery(db.WithContext(cmd.Context()), query)
	if err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	logger.Info("Query executed successfully", zap.Int("rows", len(result.Rows)))

	outputPath, err := csv.WriteToCSV(result.Rows, result.Columns, queryFlags.writeOptions(cmd, workload))
	if err != nil {
		return fmt.Errorf("failed to write data to CSV: %w", err)
	}

	absPath, _ := filepath.Abs(outputPath)
	logger.Info("Data successfully written to CSV file",
		zap.String("path", absPath),
		zap.Duration("elapsed", time.Since(startTime)))
	fmt.Fprintln(cmd.OutOrStdout(), outputPath)
	return nil
}

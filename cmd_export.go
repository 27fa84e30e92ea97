package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linehistory/csv"
	"linehistory/models"
)

// outputFlags are the CSV destination flags shared by export and query.
type outputFlags struct {
	outDir     string
	outFile    string
	appendDate bool
}

func (o *outputFlags) register(cmd *cobra.Command, defaultName string) {
	f := cmd.Flags()
	f.StringVar(&o.outDir, "outdir", "./output", "Directory for output CSV files")
	f.StringVar(&o.outFile, "outfile", defaultName, "Output CSV filename")
	f.BoolVar(&o.appendDate, "append-date", true, "Add a timestamp and random suffix to the filename")
}

// writeOptions resolves the CSV destination from flags and the workload.
func (o *outputFlags) writeOptions(cmd *cobra.Command, workload *models.Workload) models.WriteOptions {
	opts := models.WriteOptions{
		Directory:  o.outDir,
		Filename:   o.outFile,
		AppendDate: o.appendDate,
	}
	if !cmd.Flags().Changed("outdir") && workload.OutputDir != "" {
		opts.Directory = workload.OutputDir
	}
	if !cmd.Flags().Changed("outfile") && workload.OutputFile != "" {
		opts.Filename = workload.OutputFile
	}
	return opts
}

var exportFlags outputFlags

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every chat of a history to CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&historyFile, "file", "f", "", "History export (default: workload input or history.txt)")
	exportFlags.register(exportCmd, "chats")
}

func runExport(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	workload, err := loadWorkload()
	if err != nil {
		return err
	}
	h, err := readHistory(inputPath(workload))
	if err != nil {
		return err
	}

	outputPath, err := csv.ExportHistory(h, exportFlags.writeOptions(cmd, workload))
	if err != nil {
		return fmt.Errorf("failed to write data to CSV: %w", err)
	}

	absPath, _ := filepath.Abs(outputPath)
	logger.Info("Data successfully written to CSV file",
		zap.String("path", absPath),
		zap.Int("rows", h.ChatCount()),
		zap.Duration("elapsed", time.Since(startTime)))
	fmt.Fprintln(cmd.OutOrStdout(), outputPath)
	return nil
}

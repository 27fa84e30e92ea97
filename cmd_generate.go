package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linehistory/generator"
)

var genFlags struct {
	out       string
	days      int
	chats     int
	multiline int
	start     string
	group     string
	crlf      bool
	japanese  bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic history export for benchmarks",
	Long: `Writes a LINE export with a fixed header followed by one block per day:
a date line, timestamped single-line chats, one multi-line quoted chat and a
blank line. The defaults produce the standard 10,000 day benchmark fixture.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFlags.out, "out", "o", "history.txt", "Output file")
	f.IntVar(&genFlags.days, "days", 10_000, "Number of days")
	f.IntVar(&genFlags.chats, "chats", 100, "Single-line chats per day")
	f.IntVar(&genFlags.multiline, "multiline", 9, "Lines of the quoted chat ending each day (0 disables it)")
	f.StringVar(&genFlags.start, "start", "2024-01-01", "First day (YYYY-MM-DD)")
	f.StringVar(&genFlags.group, "group", "xxx", "Group name in the header")
	f.BoolVar(&genFlags.crlf, "crlf", false, "Use CRLF line endings like the LINE app")
	f.BoolVar(&genFlags.japanese, "japanese", false, "Write Japanese weekday names")
}

// generateOptions starts from the workload's generate section and applies
// every flag set on the command line.
func generateOptions(cmd *cobra.Command) (generator.Options, string, error) {
	workload, err := loadWorkload()
	if err != nil {
		return generator.Options{}, "", err
	}
	opts, err := generator.FromSpec(workload.Generate)
	if err != nil {
		return generator.Options{}, "", err
	}

	out := genFlags.out
	if !cmd.Flags().Changed("out") && workload.Output != "" {
		out = workload.Output
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		opts.Days = genFlags.days
	}
	if flags.Changed("chats") {
		opts.ChatsPerDay = genFlags.chats
	}
	if flags.Changed("multiline") {
		opts.MultilineLines = genFlags.multiline
	}
	if flags.Changed("start") {
		start, err := time.Parse(time.DateOnly, genFlags.start)
		if err != nil {
			return generator.Options{}, "", fmt.Errorf("invalid --start: %w", err)
		}
		opts.Start = start
	}
	if flags.Changed("group") {
		opts.GroupName = genFlags.group
	}
	if flags.Changed("crlf") {
		opts.Newline = "\n"
		if genFlags.crlf {
			opts.Newline = "\r\n"
		}
	}
	if flags.Changed("japanese") {
		opts.Weekdays = generator.English
		if genFlags.japanese {
			opts.Weekdays = generator.Japanese
		}
	}
	opts.Logger = logger
	return opts, out, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, out, err := generateOptions(cmd)
	if err != nil {
		return err
	}

	startTime := time.Now()
	logger.Info("Generating fixture",
		zap.String("path", out),
		zap.Int("days", opts.Days),
		zap.Int("chats_per_day", opts.ChatsPerDay),
		zap.Int("multiline_lines", opts.MultilineLines))

	stats, err := generator.GenerateFile(cmd.Context(), out, opts)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", out, err)
	}

	absPath, _ := filepath.Abs(out)
	logger.Info("Fixture written",
		zap.String("path", absPath),
		zap.Int("days", stats.Days),
		zap.Int("chats", stats.Chats),
		zap.Int("lines", stats.Lines),
		zap.Int64("bytes", stats.Bytes),
		zap.Duration("elapsed", time.Since(startTime)))

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d days, %d chats, %d lines\n", out, stats.Days, stats.Chats, stats.Lines)
	return nil
}

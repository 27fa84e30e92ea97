package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"linehistory/calendar"
)

var calFlags struct {
	year      int
	month     int
	monday    bool
	cellWidth int
	marker    string
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the days that have chats as a calendar",
	Long: `Renders a month calendar (with --month) or a whole year with every day
that has at least one chat highlighted.`,
	Args: cobra.NoArgs,
	RunE: runCalendar,
}

func init() {
	f := calendarCmd.Flags()
	f.StringVarP(&historyFile, "file", "f", "", "History export or CSV (default: workload input or history.txt)")
	f.IntVar(&calFlags.year, "year", time.Now().Year(), "Year to show")
	f.IntVar(&calFlags.month, "month", 0, "Month to show (1-12); whole year when unset")
	f.BoolVar(&calFlags.monday, "monday", false, "Start weeks on Monday")
	f.IntVar(&calFlags.cellWidth, "cell-width", 4, "Width of one day cell")
	f.StringVar(&calFlags.marker, "marker", "brackets", "Marker for active days: brackets, parens or asterisk")
}

func calendarOptions() (calendar.Options, error) {
	opts := calendar.DefaultOptions()
	opts.CellWidth = calFlags.cellWidth
	if calFlags.monday {
		opts.FirstWeekday = time.Monday
	}
	switch calFlags.marker {
	case "brackets":
		opts.Marker = calendar.SquareBrackets
	case "parens":
		opts.Marker = calendar.Parentheses
	case "asterisk":
		opts.Marker = calendar.Asterisk
	default:
		return opts, fmt.Errorf("unknown marker %q", calFlags.marker)
	}
	return opts, nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	opts, err := calendarOptions()
	if err != nil {
		return err
	}
	h, err := openHistory()
	if err != nil {
		return err
	}

	var out fmt.Stringer
	if calFlags.month != 0 {
		out, err = calendar.ForHistoryMonth(h, calFlags.year, time.Month(calFlags.month), opts)
	} else {
		out, err = calendar.ForHistoryYear(h, calFlags.year, opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

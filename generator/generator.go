// Package generator writes synthetic LINE chat-history exports used as parser
// benchmark fixtures.
package generator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dolmen-go/contextio"
	"go.uber.org/zap"
)

// WeekdayStyle selects how the weekday suffix of a date line is spelled.
type WeekdayStyle int

const (
	// English writes "Mon", "Tue", ...
	English WeekdayStyle = iota
	// Japanese writes "月", "火", ... as the LINE app does.
	Japanese
)

var japaneseWeekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Options holds the generation parameters
type Options struct {
	Days           int
	ChatsPerDay    int
	MultilineLines int
	Start          time.Time
	GroupName      string
	SavedAt        time.Time
	Sender         string
	Message        string
	Newline        string
	Weekdays       WeekdayStyle
	Logger         *zap.Logger
}

// Stats summarises what was written.
type Stats struct {
	Days  int
	Chats int
	Lines int
	Bytes int64
}

// DefaultOptions returns the parameters of the standard benchmark fixture:
// 10,000 days from 2024-01-01, 100 single-line chats and one 9-line quoted
// chat per day.
func DefaultOptions() Options {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Options{
		Days:           10_000,
		ChatsPerDay:    100,
		MultilineLines: 9,
		Start:          start,
		GroupName:      "xxx",
		SavedAt:        start,
		Sender:         "NAME",
		Message:        "MESSAGE",
		Newline:        "\n",
		Weekdays:       English,
	}
}

// ExpectedLines returns the number of physical lines Generate writes for opts.
func (o Options) ExpectedLines() int {
	perDay := 1 + o.ChatsPerDay + o.MultilineLines + 1
	return 3 + o.Days*perDay
}

// ExpectedChats returns the number of chats Generate writes for opts.
func (o Options) ExpectedChats() int {
	perDay := o.ChatsPerDay
	if o.MultilineLines > 0 {
		perDay++
	}
	return o.Days * perDay
}

func (o Options) validate() error {
	if o.Days < 0 || o.ChatsPerDay < 0 || o.MultilineLines < 0 {
		return fmt.Errorf("negative generation parameter (days=%d, chats=%d, multiline=%d)",
			o.Days, o.ChatsPerDay, o.MultilineLines)
	}
	if strings.ContainsAny(o.Sender, "\t\r\n") {
		return fmt.Errorf("sender %q must not contain tabs or line breaks", o.Sender)
	}
	if strings.ContainsAny(o.Message, "\r\n\"") {
		return fmt.Errorf("message %q must be a single unquoted line", o.Message)
	}
	return nil
}

func (o Options) dateLine(d time.Time) string {
	var wd string
	switch o.Weekdays {
	case Japanese:
		wd = japaneseWeekdays[d.Weekday()]
	default:
		wd = d.Format("Mon")
	}
	return d.Format("2006/01/02") + "(" + wd + ")"
}

type lineWriter struct {
	w       *bufio.Writer
	newline string
	lines   int
	bytes   int64
	err     error
}

func (lw *lineWriter) line(parts ...string) {
	if lw.err != nil {
		return
	}
	for _, p := range parts {
		n, err := lw.w.WriteString(p)
		lw.bytes += int64(n)
		if err != nil {
			lw.err = err
			return
		}
	}
	n, err := lw.w.WriteString(lw.newline)
	lw.bytes += int64(n)
	if err != nil {
		lw.err = err
		return
	}
	lw.lines++
}

// Generate writes a fixture to w. Writes stop as soon as ctx is done.
func Generate(ctx context.Context, w io.Writer, opts Options) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}
	if opts.Newline == "" {
		opts.Newline = "\n"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lw := &lineWriter{
		w:       bufio.NewWriterSize(contextio.NewWriter(ctx, w), 1<<16),
		newline: opts.Newline,
	}
	stats := Stats{}

	lw.line("[LINE] ", opts.GroupName, "のトーク履歴")
	lw.line("保存日時：", opts.SavedAt.Format("2006/01/02 15:04"))
	lw.line()

	start := opts.Start
	for i := 0; i < opts.Days; i++ {
		if lw.err != nil {
			break
		}
		date := start.AddDate(0, 0, i)
		lw.line(opts.dateLine(date))

		last := date
		for j := 0; j < opts.ChatsPerDay; j++ {
			last = date.Add(time.Duration(j) * time.Minute)
			lw.line(last.Format("15:04"), "\t", opts.Sender, "\t", opts.Message)
			stats.Chats++
		}
		if opts.MultilineLines > 0 {
			writeQuoted(lw, last.Format("15:04"), opts)
			stats.Chats++
		}
		lw.line()
		stats.Days++

		if stats.Days%1000 == 0 {
			logger.Debug("Generated days", zap.Int("days", stats.Days))
		}
	}

	if lw.err == nil {
		lw.err = lw.w.Flush()
	}
	stats.Lines = lw.lines
	stats.Bytes = lw.bytes
	if lw.err != nil {
		return stats, fmt.Errorf("error writing fixture: %w", lw.err)
	}
	return stats, nil
}

// writeQuoted writes one chat whose message spans several lines. LINE wraps
// such messages in double quotes.
func writeQuoted(lw *lineWriter, hhmm string, opts Options) {
	for k := 0; k < opts.MultilineLines; k++ {
		body := fmt.Sprintf("%s LINE %d", opts.Message, k)
		first, last := k == 0, k == opts.MultilineLines-1
		switch {
		case first && last:
			lw.line(hhmm, "\t", opts.Sender, "\t\"", body, "\"")
		case first:
			lw.line(hhmm, "\t", opts.Sender, "\t\"", body)
		case last:
			lw.line(body, "\"")
		default:
			lw.line(body)
		}
	}
}

// GenerateFile creates (or truncates) path and writes a fixture into it.
func GenerateFile(ctx context.Context, path string, opts Options) (Stats, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Stats{}, fmt.Errorf("error creating directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("error creating fixture file: %w", err)
	}

	stats, err := Generate(ctx, file, opts)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("error closing fixture file: %w", cerr)
	}
	return stats, err
}

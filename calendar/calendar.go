// Package calendar renders plain-text month and year calendars with
// highlighted days, used to show which days of a history have chats.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"linehistory/history"
)

var (
	// ErrInvalidMonth is returned for a month outside January..December.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	// ErrInvalidCellWidth is returned when a cell cannot hold a two-digit
	// day and its marker.
	ErrInvalidCellWidth = errors.New("cell width must be at least 4")
)

// Marker decorates the cell of a marked day. day is already padded to the
// cell width minus two.
type Marker interface {
	Mark(day string) string
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(day string) string

// Mark calls f.
func (f MarkerFunc) Mark(day string) string { return f(day) }

// Built-in markers: "[15]", "(15)" and "*15 ".
var (
	SquareBrackets Marker = MarkerFunc(func(day string) string { return "[" + day + "]" })
	Parentheses    Marker = MarkerFunc(func(day string) string { return "(" + day + ")" })
	Asterisk       Marker = MarkerFunc(func(day string) string { return "*" + day + " " })
)

// Options controls the layout.
type Options struct {
	FirstWeekday time.Weekday
	CellWidth    int
	Marker       Marker
}

// DefaultOptions starts weeks on Sunday with 4-column cells and square
// bracket markers.
func DefaultOptions() Options {
	return Options{FirstWeekday: time.Sunday, CellWidth: 4, Marker: SquareBrackets}
}

func (o Options) validate() error {
	if o.CellWidth < 4 {
		return fmt.Errorf("%w: got %d", ErrInvalidCellWidth, o.CellWidth)
	}
	return nil
}

// Month is the calendar of one month.
type Month struct {
	year   int
	month  time.Month
	opts   Options
	marked map[int]bool
}

// NewMonth returns an unmarked month calendar.
func NewMonth(year int, month time.Month, opts Options) (*Month, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Marker == nil {
		opts.Marker = SquareBrackets
	}
	return &Month{year: year, month: month, opts: opts, marked: map[int]bool{}}, nil
}

// Mark highlights day. Days outside the month are ignored.
func (m *Month) Mark(day int) {
	if day >= 1 && day <= m.daysIn() {
		m.marked[day] = true
	}
}

// Marked reports whether day is highlighted.
func (m *Month) Marked(day int) bool { return m.marked[day] }

func (m *Month) daysIn() int {
	return time.Date(m.year, m.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m *Month) width() int { return 7 * m.opts.CellWidth }

func (m *Month) cell(text string) string {
	return " " + pad(text, m.opts.CellWidth-2) + " "
}

// Lines returns the rendered rows: title, weekday header and one row per week.
func (m *Month) Lines() []string {
	lines := []string{center(m.month.String(), m.width())}

	var header strings.Builder
	for i := 0; i < 7; i++ {
		wd := (m.opts.FirstWeekday + time.Weekday(i)) % 7
		header.WriteString(m.cell(wd.String()[:2]))
	}
	lines = append(lines, header.String())

	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	offset := (int(first) - int(m.opts.FirstWeekday) + 7) % 7
	blank := strings.Repeat(" ", m.opts.CellWidth)

	var week strings.Builder
	for i := 0; i < offset; i++ {
		week.WriteString(blank)
	}
	col := offset
	for day := 1; day <= m.daysIn(); day++ {
		text := strconv.Itoa(day)
		if m.marked[day] {
			week.WriteString(m.opts.Marker.Mark(pad(text, m.opts.CellWidth-2)))
		} else {
			week.WriteString(m.cell(text))
		}
		col++
		if col == 7 {
			lines = append(lines, week.String())
			week.Reset()
			col = 0
		}
	}
	if col > 0 {
		for ; col < 7; col++ {
			week.WriteString(blank)
		}
		lines = append(lines, week.String())
	}
	return lines
}

func (m *Month) String() string {
	return strings.Join(m.Lines(), "\n")
}

// Year is twelve month calendars laid out three per row.
type Year struct {
	year   int
	months [12]*Month
}

// NewYear returns an unmarked year calendar.
func NewYear(year int, opts Options) (*Year, error) {
	y := &Year{year: year}
	for i := range y.months {
		m, err := NewMonth(year, time.Month(i+1), opts)
		if err != nil {
			return nil, err
		}
		y.months[i] = m
	}
	return y, nil
}

// Mark highlights one day of the year.
func (y *Year) Mark(month time.Month, day int) {
	if month >= time.January && month <= time.December {
		y.months[month-1].Mark(day)
	}
}

// Month returns the calendar of one month.
func (y *Year) Month(month time.Month) *Month {
	if month < time.January || month > time.December {
		return nil
	}
	return y.months[month-1]
}

func (y *Year) String() string {
	const perRow = 3
	gap := "  "

	rows := make([]string, 0, 12/perRow*2)
	for r := 0; r < 12; r += perRow {
		blocks := make([]string, 0, perRow*2-1)
		for i := r; i < r+perRow; i++ {
			if i > r {
				blocks = append(blocks, gap)
			}
			blocks = append(blocks, y.months[i].String())
		}
		if len(rows) > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}

	width := perRow*y.months[0].width() + (perRow-1)*len(gap)
	title := center(strconv.Itoa(y.year), width)
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, rows...)...)
}

// ForHistoryMonth returns a month calendar marking the days of h that fall in
// year and month.
func ForHistoryMonth(h *history.History, year int, month time.Month, opts Options) (*Month, error) {
	m, err := NewMonth(year, month, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range h.Dates() {
		if d.Year == year && d.Month == month {
			m.Mark(d.Day)
		}
	}
	return m, nil
}

// ForHistoryYear returns a year calendar marking the days of h in year.
func ForHistoryYear(h *history.History, year int, opts Options) (*Year, error) {
	y, err := NewYear(year, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range h.Dates() {
		if d.Year == year {
			y.Mark(d.Month, d.Day)
		}
	}
	return y, nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

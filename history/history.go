// Package history parses LINE chat-history exports and searches them by
// date, keyword or at random.
package history

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

// Date is a calendar day without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY/MM/DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006/01/02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare orders dates chronologically.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Chat is one message. Sender is nil for system messages such as
// "A joined the group".
type Chat struct {
	Time         Clock
	Sender       *string
	MessageLines []string
}

// SenderName returns the sender or "" for system messages.
func (c *Chat) SenderName() string {
	if c.Sender == nil {
		return ""
	}
	return *c.Sender
}

// Contains reports whether any message line contains keyword.
func (c *Chat) Contains(keyword string) bool {
	for _, line := range c.MessageLines {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}

// Message joins the message lines and removes the double quotes LINE wraps
// around multi-line messages.
func (c *Chat) Message() string {
	msg := strings.Join(c.MessageLines, "\n")
	if len(c.MessageLines) > 1 && len(msg) >= 2 &&
		strings.HasPrefix(msg, `"`) && strings.HasSuffix(msg, `"`) {
		msg = msg[1 : len(msg)-1]
	}
	return msg
}

func (c *Chat) String() string {
	return c.Time.String() + "\t" + c.SenderName() + "\t" + strings.Join(c.MessageLines, "\n")
}

// Day holds the chats of one date in file order.
type Day struct {
	Date  Date
	Chats []Chat
}

// SearchByKeyword returns the chats of d containing keyword.
func (d *Day) SearchByKeyword(keyword string) []KeywordMatch {
	var matches []KeywordMatch
	for i := range d.Chats {
		if d.Chats[i].Contains(keyword) {
			matches = append(matches, KeywordMatch{Date: d.Date, Chat: &d.Chats[i], Index: i})
		}
	}
	return matches
}

func (d *Day) String() string {
	var b strings.Builder
	b.WriteString(d.Date.String())
	b.WriteString("(")
	b.WriteString(d.Date.Time().Format("Mon"))
	b.WriteString(")")
	for i := range d.Chats {
		b.WriteString("\n")
		b.WriteString(d.Chats[i].String())
	}
	return b.String()
}

// KeywordMatch is one chat found by a keyword search.
type KeywordMatch struct {
	Date  Date
	Chat  *Chat
	Index int
}

func (m KeywordMatch) String() string {
	return m.Date.String() + " " + m.Chat.String()
}

// History is a whole export keyed by date.
type History struct {
	days map[Date]*Day
}

// New returns a history holding days. Days sharing a date are merged.
func New(days ...Day) *History {
	h := &History{days: make(map[Date]*Day, len(days))}
	for _, d := range days {
		day := h.dayFor(d.Date)
		day.Chats = append(day.Chats, d.Chats...)
	}
	return h
}

func (h *History) dayFor(date Date) *Day {
	day, ok := h.days[date]
	if !ok {
		day = &Day{Date: date}
		h.days[date] = day
	}
	return day
}

// Append adds chats to the day of date, creating it if needed.
func (h *History) Append(date Date, chats ...Chat) {
	day := h.dayFor(date)
	day.Chats = append(day.Chats, chats...)
}

// Len returns the number of days.
func (h *History) Len() int { return len(h.days) }

// IsEmpty reports whether h holds no day.
func (h *History) IsEmpty() bool { return len(h.days) == 0 }

// Dates returns every date in ascending order.
func (h *History) Dates() []Date {
	dates := make([]Date, 0, len(h.days))
	for d := range h.days {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, Date.Compare)
	return dates
}

// Days returns every day in ascending date order.
func (h *History) Days() []*Day {
	dates := h.Dates()
	days := make([]*Day, len(dates))
	for i, d := range dates {
		days[i] = h.days[d]
	}
	return days
}

// ChatCount returns the total number of chats.
func (h *History) ChatCount() int {
	n := 0
	for _, d := range h.days {
		n += len(d.Chats)
	}
	return n
}

// SearchByDate returns the day for date or ErrNotFound.
func (h *History) SearchByDate(date Date) (*Day, error) {
	day, ok := h.days[date]
	if !ok {
		return nil, fmt.Errorf("%s: %w", date, ErrNotFound)
	}
	return day, nil
}

// SearchByKeyword returns every chat containing keyword, ordered by date and
// then by position within the day.
func (h *History) SearchByKeyword(keyword string) []KeywordMatch {
	var matches []KeywordMatch
	for _, day := range h.Days() {
		matches = append(matches, day.SearchByKeyword(keyword)...)
	}
	return matches
}

// SearchByRandom picks a day uniformly. A nil rng uses the global source.
func (h *History) SearchByRandom(rng *rand.Rand) (*Day, error) {
	if h.IsEmpty() {
		return nil, ErrEmptyHistory
	}
	dates := h.Dates()
	var i int
	if rng == nil {
		i = rand.IntN(len(dates))
	} else {
		i = rng.IntN(len(dates))
	}
	return h.days[dates[i]], nil
}

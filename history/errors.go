package history

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no day matches a date lookup.
	ErrNotFound = errors.New("date not found in history")
	// ErrEmptyHistory is returned by operations that need at least one day.
	ErrEmptyHistory = errors.New("history is empty")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	EmptyFile ErrorKind = iota
	InvalidEntry
	ContinuationBeforeEntry
	InvalidDate
	InvalidTime
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyFile:
		return "empty file"
	case InvalidEntry:
		return "invalid entry"
	case ContinuationBeforeEntry:
		return "continuation before entry"
	case InvalidDate:
		return "invalid date"
	case InvalidTime:
		return "invalid time"
	default:
		return "internal error"
	}
}

// ParseError describes one malformed record. Line is 1-based and counts
// records, so a CRLF export with embedded LF messages reports record numbers.
type ParseError struct {
	Kind   ErrorKind
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, msg, e.Text)
	}
	return msg
}

// ParseErrors aggregates every ParseError found in one input. The history
// returned alongside it holds everything that could be parsed.
type ParseErrors []*ParseError

func (pe ParseErrors) Error() string {
	switch len(pe) {
	case 0:
		return "no parse errors"
	case 1:
		return pe[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d parse errors:", len(pe))
	for _, e := range pe {
		b.WriteString("\n\t")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (pe ParseErrors) Unwrap() []error {
	errs := make([]error, len(pe))
	for i, e := range pe {
		errs[i] = e
	}
	return errs
}

// IgnoreErrors drops parse errors and keeps the partial history. Errors that
// are not ParseErrors are returned unchanged.
func IgnoreErrors(h *History, err error) (*History, error) {
	var pe ParseErrors
	if err == nil || errors.As(err, &pe) {
		return h, nil
	}
	return h, err
}

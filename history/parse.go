package history

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// headerLines is the number of records LINE writes before the first date:
// the group title, the save timestamp and a blank line.
const headerLines = 3

// Parse builds a History from a LINE export.
//
// Exports written by the LINE app separate records with CRLF and keep LF
// inside multi-line messages; plain LF files are accepted as well. The line
// ending of the first line decides which of the two applies. A date
// line only opens a day when it starts a section (the first record or the
// first record after a blank one). Anything that cannot be parsed is
// reported in a ParseErrors while the rest of the input is still returned.
func Parse(input string) (*History, error) {
	h := New()
	if input == "" {
		return h, ParseErrors{{Kind: EmptyFile}}
	}

	crlf := strings.HasSuffix(firstLine(input), "\r")
	var records []string
	if crlf {
		records = strings.Split(input, "\r\n")
	} else {
		records = strings.Split(input, "\n")
		for i, r := range records {
			records[i] = strings.TrimSuffix(r, "\r")
		}
	}

	first := 0
	if _, ok := parseDateLine(firstLine(records[0])); !ok {
		first = min(headerLines, len(records))
	}

	p := parser{history: h, sectionStart: true}
	for i := first; i < len(records); i++ {
		p.record(i+1, records[i])
	}
	p.flush()

	if len(p.errs) > 0 {
		return h, p.errs
	}
	return h, nil
}

// ParseFile reads path and parses it.
func ParseFile(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading history file: %w", err)
	}
	return Parse(string(data))
}

type parser struct {
	history      *History
	current      *Day
	pending      *Chat
	sectionStart bool
	blanks       int
	errs         ParseErrors
}

func (p *parser) fail(kind ErrorKind, line int, text, reason string) {
	p.errs = append(p.errs, &ParseError{Kind: kind, Line: line, Text: text, Reason: reason})
}

func (p *parser) flush() {
	if p.pending != nil && p.current != nil {
		p.current.Chats = append(p.current.Chats, *p.pending)
	}
	p.pending = nil
}

func (p *parser) record(line int, rec string) {
	if strings.TrimSpace(rec) == "" {
		p.blanks++
		p.sectionStart = true
		return
	}

	if p.sectionStart {
		p.sectionStart = false
		if date, ok := parseDateLine(rec); ok {
			p.flush()
			p.current = p.history.dayFor(date)
			p.blanks = 0
			// a date record never holds a message, so LF-separated text
			// after it is read as records of its own
			if i := strings.IndexByte(rec, '\n'); i >= 0 {
				for _, r := range strings.Split(rec[i+1:], "\n") {
					p.record(line, r)
				}
			}
			return
		}
		if looksLikeDate(rec) {
			p.fail(InvalidDate, line, rec, "")
			return
		}
	}

	if p.current == nil {
		p.blanks = 0
		p.fail(Internal, line, rec, "entry before any date line")
		return
	}

	if isChatStart(rec) {
		p.flush()
		p.blanks = 0
		chat, err := parseChatEntry(line, rec)
		if err != nil {
			p.errs = append(p.errs, err)
			return
		}
		p.pending = chat
		return
	}

	if p.pending == nil {
		p.blanks = 0
		p.fail(ContinuationBeforeEntry, line, rec, "")
		return
	}
	for ; p.blanks > 0; p.blanks-- {
		p.pending.MessageLines = append(p.pending.MessageLines, "")
	}
	p.pending.MessageLines = append(p.pending.MessageLines, strings.Split(rec, "\n")...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseDateLine reads the leading "YYYY/MM/DD" of a date line such as
// "2025/01/01(水)".
func parseDateLine(line string) (Date, bool) {
	if len(line) < 10 {
		return Date{}, false
	}
	t, err := time.Parse("2006/01/02", line[:10])
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

func looksLikeDate(line string) bool {
	if len(line) < 10 || line[4] != '/' || line[7] != '/' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if !isDigit(line[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isChatStart reports whether line begins with "HH:MM\t".
func isChatStart(line string) bool {
	return len(line) >= 6 &&
		isDigit(line[0]) && isDigit(line[1]) && line[2] == ':' &&
		isDigit(line[3]) && isDigit(line[4]) && line[5] == '\t'
}

func parseChatEntry(line int, rec string) (*Chat, *ParseError) {
	parts := strings.SplitN(rec, "\t", 3)
	if len(parts) < 3 {
		return nil, &ParseError{Kind: InvalidEntry, Line: line, Text: rec, Reason: "expected time, sender and message"}
	}

	hour := int(parts[0][0]-'0')*10 + int(parts[0][1]-'0')
	minute := int(parts[0][3]-'0')*10 + int(parts[0][4]-'0')
	if hour > 23 || minute > 59 {
		return nil, &ParseError{Kind: InvalidTime, Line: line, Text: parts[0]}
	}

	chat := &Chat{
		Time:         Clock{Hour: hour, Minute: minute},
		MessageLines: strings.Split(parts[2], "\n"),
	}
	if strings.TrimSpace(parts[1]) != "" {
		sender := parts[1]
		chat.Sender = &sender
	}
	return chat, nil
}

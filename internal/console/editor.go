package console

import (
	"io"
	"unicode/utf8"
)

// DefaultMaxLine is the input line buffer size in bytes.
const DefaultMaxLine = 256

// Event is what a byte fed to the line editor produced.
type Event int

const (
	EventNone      Event = iota
	EventLine            // a complete line is ready
	EventOverflow        // a line ended after exceeding the buffer; discarded
	EventInterrupt       // Ctrl-C; pending input discarded
	EventEOF             // Ctrl-D on an empty line
)

const (
	keyCtrlC     = 0x03
	keyCtrlD     = 0x04
	keyBackspace = 0x08
	keyDelete    = 0x7f
	keyEscape    = 0x1b
)

type escState int

const (
	escNone escState = iota
	escStart
	escCSI
)

// LineEditor assembles input bytes into lines.  It echoes what it
// accepts, erases on backspace or delete, and treats CR, LF and CRLF as
// one terminator.  Bytes beyond the buffer are dropped without echo and
// the whole line is discarded when it ends.
//
// ANSI escape sequences (arrow keys and the like) are swallowed.
type LineEditor struct {
	echo     io.Writer
	max      int
	buf      []byte
	overflow bool
	afterCR  bool
	esc      escState
}

// NewLineEditor returns an editor echoing to echo (which may be nil).
// max <= 0 selects DefaultMaxLine.
func NewLineEditor(echo io.Writer, max int) *LineEditor {
	if max <= 0 {
		max = DefaultMaxLine
	}
	return &LineEditor{echo: echo, max: max, buf: make([]byte, 0, max)}
}

// Max returns the buffer size.
func (e *LineEditor) Max() int { return e.max }

// Pending returns the unterminated input.
func (e *LineEditor) Pending() string { return string(e.buf) }

// Feed consumes one byte.  The returned line is valid only with
// EventLine.
func (e *LineEditor) Feed(b byte) (Event, string) {
	afterCR := e.afterCR
	e.afterCR = false

	switch e.esc {
	case escStart:
		if b == '[' {
			e.esc = escCSI
		} else {
			e.esc = escNone
		}
		return EventNone, ""
	case escCSI:
		if b >= 0x40 && b <= 0x7e {
			e.esc = escNone
		}
		return EventNone, ""
	}

	switch b {
	case '\r':
		e.afterCR = true
		return e.terminate()
	case '\n':
		if afterCR {
			return EventNone, ""
		}
		return e.terminate()
	case keyBackspace, keyDelete:
		e.erase()
		return EventNone, ""
	case keyCtrlC:
		e.reset()
		e.write("^C\n")
		return EventInterrupt, ""
	case keyCtrlD:
		if len(e.buf) == 0 && !e.overflow {
			return EventEOF, ""
		}
		return EventNone, ""
	case keyEscape:
		e.esc = escStart
		return EventNone, ""
	}

	if b < 0x20 {
		return EventNone, ""
	}
	if len(e.buf) >= e.max {
		e.overflow = true
		return EventNone, ""
	}
	e.buf = append(e.buf, b)
	e.write(string(b))
	return EventNone, ""
}

// Flush terminates an unfinished line as if a newline had been typed.
// It returns EventNone when nothing is pending.
func (e *LineEditor) Flush() (Event, string) {
	e.esc = escNone
	if len(e.buf) == 0 && !e.overflow {
		return EventNone, ""
	}
	return e.terminate()
}

func (e *LineEditor) terminate() (Event, string) {
	e.write("\n")
	if e.overflow {
		e.reset()
		return EventOverflow, ""
	}
	line := string(e.buf)
	e.reset()
	return EventLine, line
}

// erase removes the last character.  A multi-byte UTF-8 sequence is
// removed whole.
func (e *LineEditor) erase() {
	if len(e.buf) == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(e.buf)
	if size < 1 {
		size = 1
	}
	e.buf = e.buf[:len(e.buf)-size]
	e.write("\b \b")
}

func (e *LineEditor) reset() {
	e.buf = e.buf[:0]
	e.overflow = false
}

func (e *LineEditor) write(s string) {
	if e.echo != nil {
		io.WriteString(e.echo, s) //nolint:errcheck
	}
}

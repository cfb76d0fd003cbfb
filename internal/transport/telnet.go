package transport

import "io"

// Telnet protocol bytes.
const (
	optEcho = 0x01
	optSGA  = 0x03

	iac  = 0xff
	se   = 0xf0
	sb   = 0xfa
	will = 0xfb
	dont = 0xfe
)

// TelnetGreeting offers server-side echo and suppress-go-ahead, which
// moves a telnet client out of local line mode so the console's own
// echo and line editing are the only ones in effect.
var TelnetGreeting = []byte{iac, will, optEcho, iac, will, optSGA}

type telnetState int

const (
	tsData telnetState = iota
	tsIAC
	tsOption
	tsSub
	tsSubIAC
)

// TelnetFilter strips telnet command sequences (IAC ...) from a byte
// stream so a telnet client can drive the console like a raw TCP one.
// An escaped IAC IAC yields a single 0xff data byte.
type TelnetFilter struct {
	r     io.Reader
	state telnetState
}

// NewTelnetFilter wraps r.
func NewTelnetFilter(r io.Reader) *TelnetFilter {
	return &TelnetFilter{r: r}
}

// Read implements io.Reader.  A read that yields only telnet commands
// is retried.
func (t *TelnetFilter) Read(p []byte) (int, error) {
	for {
		n, err := t.r.Read(p)
		out := 0
		for _, b := range p[:n] {
			if t.step(b) {
				p[out] = b
				out++
			}
		}
		if out > 0 || err != nil || n == 0 {
			return out, err
		}
	}
}

// step advances the parser and reports whether b is data.
func (t *TelnetFilter) step(b byte) bool {
	switch t.state {
	case tsIAC:
		switch {
		case b == iac:
			t.state = tsData
			return true
		case b >= will && b <= dont:
			t.state = tsOption
		case b == sb:
			t.state = tsSub
		default:
			t.state = tsData
		}
		return false
	case tsOption:
		t.state = tsData
		return false
	case tsSub:
		if b == iac {
			t.state = tsSubIAC
		}
		return false
	case tsSubIAC:
		if b == se {
			t.state = tsData
		} else {
			t.state = tsSub
		}
		return false
	}

	if b == iac {
		t.state = tsIAC
		return false
	}
	return true
}

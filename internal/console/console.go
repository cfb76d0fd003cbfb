// Package console is the operator-facing command loop.
//
// A Console owns the session for its lifetime.  Run is the foreground
// loop: a single goroutine that selects over bytes from the input
// stream and a status ticker, feeds the line editor, dispatches
// complete lines and prints the periodic monitor line while a capture
// is running.  A helper goroutine does nothing but move input bytes
// onto a channel.
package console

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	rcerr "radiocon/internal/errors"
	"radiocon/internal/report"
	"radiocon/internal/session"
	"radiocon/util"
)

// DefaultPrompt is printed after every command.
const DefaultPrompt = "radio> "

// DefaultStatusInterval is the monitor line cadence.
const DefaultStatusInterval = 2 * time.Second

// Options configures a Console.
type Options struct {
	Prompt         string
	MaxLine        int
	StatusInterval time.Duration
	// Raw translates "\n" to "\r\n" on output, for terminals in raw mode
	// and serial links.
	Raw      bool
	Identity report.Identity
	Probe    report.Probe
	// Restart replaces the running process.  It returns only on failure.
	Restart func() error
}

// Console binds a session to an input stream and an output stream.
type Console struct {
	sess     *session.Session
	in       io.Reader
	out      io.Writer
	logger   *util.Logger
	opts     Options
	editor   *LineEditor
	commands []*command
	index    map[string]*command
}

// New builds a console.  out receives echo, responses and prompts.
func New(sess *session.Session, in io.Reader, out io.Writer, opts Options, logger *util.Logger) *Console {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.MaxLine <= 0 {
		opts.MaxLine = DefaultMaxLine
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = DefaultStatusInterval
	}
	if logger == nil {
		logger = util.NewLogger(0)
	}
	if opts.Raw {
		out = &crlfWriter{w: out}
	}

	c := &Console{
		sess:     sess,
		in:       in,
		out:      out,
		logger:   logger.With("console"),
		opts:     opts,
		commands: commandTable(),
		index:    make(map[string]*command),
	}
	c.editor = NewLineEditor(out, opts.MaxLine)
	for _, cmd := range c.commands {
		c.index[cmd.name] = cmd
		for _, a := range cmd.aliases {
			c.index[a] = cmd
		}
	}
	return c
}

type chunk struct {
	data []byte
	err  error
}

// Run prints the banner and serves commands until ctx is cancelled or
// the input ends.  Either way the session is shut down before Run
// returns.  Only a read error other than io.EOF is returned.
func (c *Console) Run(ctx context.Context) error {
	defer c.sess.Shutdown()

	report.Banner(c.out, c.identity())
	c.prompt()

	done := make(chan struct{})
	defer close(done)
	input := make(chan chunk)
	go c.read(input, done)

	ticker := time.NewTicker(c.opts.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.println("")
			c.logger.Verbose("shutting down: %v", ctx.Err())
			return nil

		case ch := <-input:
			for _, b := range ch.data {
				if quit := c.feed(ctx, b); quit {
					return nil
				}
			}
			if ch.err != nil {
				if ch.err == io.EOF {
					c.logger.Verbose("input closed")
					if ev, line := c.editor.Flush(); ev != EventNone {
						c.handle(ctx, ev, line)
					}
					return nil
				}
				return fmt.Errorf("console input: %w", ch.err)
			}

		case <-ticker.C:
			if c.sess.Mode() == session.Monitoring {
				c.interject(report.MonitorLine(c.sess.Channel(), c.sess.Counters()))
			}
		}
	}
}

func (c *Console) read(input chan<- chunk, done <-chan struct{}) {
	buf := make([]byte, 256)
	for {
		n, err := c.in.Read(buf)
		data := append([]byte(nil), buf[:n]...)
		if n > 0 || err != nil {
			select {
			case input <- chunk{data: data, err: err}:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// feed handles one input byte and reports whether the console should
// stop.
func (c *Console) feed(ctx context.Context, b byte) bool {
	ev, line := c.editor.Feed(b)
	return c.handle(ctx, ev, line)
}

// handle acts on one editor event and reports whether the console
// should stop.
func (c *Console) handle(ctx context.Context, ev Event, line string) bool {
	switch ev {
	case EventLine:
		c.Execute(ctx, line)
		c.prompt()
	case EventOverflow:
		c.printf("Input too long (max %d characters); line discarded.\n", c.editor.Max())
		c.prompt()
	case EventInterrupt:
		c.prompt()
	case EventEOF:
		c.println("")
		return true
	}
	return false
}

// Execute dispatches one input line.  The prompt is not printed.
func (c *Console) Execute(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	word, args := splitWord(line)
	cmd, ok := c.index[strings.ToLower(word)]
	if !ok {
		c.printf("Unknown command: '%s'. Type 'help' for available commands.\n", word)
		return
	}
	c.logger.Debug("dispatch %s %q", cmd.name, args)
	cmd.run(c, ctx, args)
}

// interject prints a line without losing a partly typed command.
func (c *Console) interject(line string) {
	pending := c.editor.Pending()
	c.printf("\r%s\n", line)
	c.printf("%s%s", c.opts.Prompt, pending)
}

func (c *Console) monitorLine() {
	c.println(report.MonitorLine(c.sess.Channel(), c.sess.Counters()))
}

// fail prints the operator-facing text of a rejected operation.
func (c *Console) fail(err error) {
	switch {
	case rcerr.IsValidation(err), rcerr.IsGuard(err), rcerr.IsNoop(err):
		c.println(err.Error())
	default:
		c.printf("Error: %v\n", err)
		c.logger.Verbose("%v", err)
	}
}

func (c *Console) identity() report.Identity {
	id := c.opts.Identity
	if id.BootID == "" {
		id.BootID = c.sess.ID().String()
	}
	if id.Radio == "" {
		id.Radio = c.sess.RadioName()
	}
	return id
}

func (c *Console) now() time.Time { return c.sess.Now() }

func (c *Console) prompt() { io.WriteString(c.out, c.opts.Prompt) } //nolint:errcheck

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func (c *Console) printf(format string, args ...interface{}) { fmt.Fprintf(c.out, format, args...) }

// crlfWriter expands every "\n" to "\r\n".
type crlfWriter struct{ w io.Writer }

func (cw *crlfWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return cw.w.Write(p)
	}
	if _, err := cw.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

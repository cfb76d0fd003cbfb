// Package transport carries the console over a network connection, the
// way a serial-over-IP bridge exposes a device's console.
//
// Clients are served one at a time: the radio and its session are a
// single shared resource.  Further connections wait in the listen
// backlog until the current client disconnects.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"radiocon/util"
)

// Handler runs a console over one client connection.  It returns when
// the client disconnects or ctx is cancelled.
type Handler func(ctx context.Context, rw io.ReadWriter) error

// Server accepts console clients on a TCP address.
type Server struct {
	Address string // ":2323"
	// KeepOpen accepts further clients after one disconnects; otherwise
	// Run returns after the first client.
	KeepOpen bool
	// IdleTimeout closes a client that sends nothing for this long
	// (0 = never).
	IdleTimeout time.Duration
	// Telnet sends TelnetGreeting to each client before the console
	// starts.
	Telnet  bool
	Handler Handler
	Logger  *util.Logger
}

// Run listens on Address and serves clients until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts clients from ln.  ln is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	logger := s.logger()
	logger.Info("console listening on %s (tcp)", ln.Addr())

	// Shut the listener down when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		logger.Info("console client %s connected", conn.RemoteAddr())
		err = s.serveConn(ctx, conn)
		logger.Info("console client %s disconnected", conn.RemoteAddr())
		if err != nil {
			logger.Warn("client %s: %v", conn.RemoteAddr(), err)
		}

		if !s.KeepOpen || ctx.Err() != nil {
			return nil
		}
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	// Unblock the handler's reader when the server shuts down.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if s.Telnet {
		if _, err := conn.Write(TelnetGreeting); err != nil {
			return fmt.Errorf("telnet negotiation: %w", err)
		}
	}

	var r io.Reader = conn
	if s.IdleTimeout > 0 {
		r = &idleReader{conn: conn, timeout: s.IdleTimeout}
	}
	rw := struct {
		io.Reader
		io.Writer
	}{NewTelnetFilter(r), conn}
	return s.Handler(ctx, rw)
}

func (s *Server) logger() *util.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return util.NewLogger(0)
}

// idleReader pushes the read deadline forward before every read.
type idleReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	r.conn.SetReadDeadline(time.Now().Add(r.timeout)) //nolint:errcheck
	return r.conn.Read(p)
}

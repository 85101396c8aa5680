package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/fightbook/internal/frontend/telnet"
)

// TelnetClient drives an arena telnet session from a test. Output is
// returned with negotiation bytes and ANSI styling removed.
type TelnetClient struct {
	conn    net.Conn
	pending strings.Builder
	t       *testing.T
}

// NewTelnetClient dials addr and closes the connection when the test ends.
//
// Precondition: a server must be listening on addr.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until the plain-text output contains substr and returns
// everything up to and including it. Text after the match is kept for the
// next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 1024)
	for {
		if out, ok := c.take(substr); ok {
			return out
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.pending.WriteString(telnet.StripANSI(string(telnet.FilterIAC(tmp[:n]))))
		}
		if err != nil {
			if out, ok := c.take(substr); ok {
				return out
			}
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.pending.String(), err)
		}
	}
}

func (c *TelnetClient) take(substr string) (string, bool) {
	buf := c.pending.String()
	idx := strings.Index(buf, substr)
	if idx < 0 {
		return "", false
	}
	end := idx + len(substr)
	c.pending.Reset()
	c.pending.WriteString(buf[end:])
	return buf[:end], true
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}

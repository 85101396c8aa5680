package telnet

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds a single input line; longer input is truncated.
const MaxLineLength = 512

// Conn is a line-oriented Telnet connection. Negotiation bytes are
// stripped from input; writes are serialized.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader

	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. A zero timeout disables that deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next input line without its terminator. Control
// characters other than tab are dropped.
//
// Postcondition: len(line) <= MaxLineLength.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		case line.Len() < MaxLineLength:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the remainder of a command whose IAC byte was already read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// Write sends data as-is.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armWrite()
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armWrite()
	_, err := fmt.Fprintf(c.raw, "%s\r\n", text)
	return err
}

// WritePrompt sends prompt with no line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armWrite()
	_, err := fmt.Fprint(c.raw, prompt)
	return err
}

// Play writes lines one at a time, waiting delay between them. It stops
// early with ctx.Err() when ctx is cancelled.
//
// Precondition: delay >= 0.
// Postcondition: on a nil return every line has been written in order.
func (c *Conn) Play(ctx context.Context, lines []string, delay time.Duration) error {
	if delay <= 0 {
		var b strings.Builder
		for _, l := range lines {
			b.WriteString(l)
			b.WriteString("\r\n")
		}
		return c.Write([]byte(b.String()))
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for i, l := range lines {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := c.WriteLine(l); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) armWrite() {
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC strips Telnet command sequences from input. An escaped
// IAC IAC yields one literal 0xFF.
//
// Postcondition: len(result) <= len(input).
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); {
		if input[i] != IAC || i+1 >= len(input) {
			out = append(out, input[i])
			i++
			continue
		}
		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 3
		case SB:
			j := i + 2
			for j < len(input)-1 && !(input[j] == IAC && input[j+1] == SE) {
				j++
			}
			i = j + 2
		case IAC:
			out = append(out, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return out
}

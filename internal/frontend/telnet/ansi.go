// Package telnet serves the arena to line-mode terminal clients.
package telnet

import (
	"fmt"
	"strings"
)

// SGR escape sequences used by the arena renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text in color followed by Reset. An empty color or empty
// text returns text unchanged.
//
// Postcondition: StripANSI(Colorize(c, text)) == text.
func Colorize(color, text string) string {
	if color == "" || text == "" {
		return text
	}
	return color + text + Reset
}

// Colorf formats and then colorizes.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes every ESC [ ... m sequence from s.
//
// Postcondition: the result contains no ESC byte that begins a complete SGR sequence.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 3
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

package shell

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// QuoteSplit splits a command line by spaces, keeping quoted parts whole.
// It returns nil for an unclosed quote.
func QuoteSplit(s string) []string {
	var a []string

	for len(s) > 0 {
		switch c := s[0]; c {
		case '\t', '\n', '\r', ' ':
			s = s[1:]
		case '"', '\'':
			i := strings.IndexByte(s[1:], c)
			if i < 0 {
				return nil
			}
			a = append(a, s[1:i+1])
			s = s[i+2:]
		default:
			if i := strings.IndexAny(s, "\t\n\r "); i > 0 {
				a, s = append(a, s[:i]), s[i:]
			} else {
				a, s = append(a, s), ""
			}
		}
	}

	return a
}

// SignalContext is cancelled with the first SIGINT or SIGTERM
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Package chat runs Carl's line-oriented terminal dialogue.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Replier produces one reply per inbound message.
type Replier interface {
	Reply(ctx context.Context, message string) string
	Greeting() string
	Farewell() string
}

var sentinels = map[string]struct{}{"exit": {}, "quit": {}, "bye": {}}

// IsSentinel reports whether line ends the session.
func IsSentinel(line string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

// Session pairs a Replier with an input and output stream.
type Session struct {
	bot    Replier
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
}

// NewSession returns a Session reading from in and writing to out.
func NewSession(bot Replier, in io.Reader, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{bot: bot, in: in, out: out, logger: logger}
}

// Run greets the user and answers lines until a sentinel word, end of input,
// or ctx is cancelled. Input is read on its own goroutine so cancellation is
// not held up by a blocked read; that goroutine exits once the input yields.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	done := make(chan error, 1)
	go s.read(ctx, lines, done)

	fmt.Fprintf(s.out, "Carl: %s\n", s.bot.Greeting())
	turns := 0
	for {
		fmt.Fprint(s.out, "You: ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			s.logger.Info("session cancelled", zap.Int("turns", turns))
			return ctx.Err()
		case err := <-done:
			fmt.Fprintln(s.out)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			s.logger.Info("input closed", zap.Int("turns", turns))
			return nil
		case line := <-lines:
			if IsSentinel(line) {
				fmt.Fprintf(s.out, "Carl: %s\n", s.bot.Farewell())
				s.logger.Info("session ended", zap.Int("turns", turns))
				return nil
			}
			fmt.Fprintf(s.out, "Carl: %s\n", s.bot.Reply(ctx, line))
			turns++
		}
	}
}

func (s *Session) read(ctx context.Context, lines chan<- string, done chan<- error) {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	done <- scanner.Err()
}

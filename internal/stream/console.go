package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Console reads values as lines of text and writes values as lines of text.
//
// Pull cannot be interrupted once a read is in flight: ctx is only checked
// before reading.
type Console struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	w       io.Writer
	prompt  string
	closed  bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithPrompt writes prompt to the console's writer before every read.
func WithPrompt(prompt string) ConsoleOption {
	return func(c *Console) { c.prompt = prompt }
}

// NewConsole creates a console stream over r and w.
func NewConsole(r io.Reader, w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		scanner: bufio.NewScanner(r),
		w:       w,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stdio returns a console stream over the process's stdin and stdout.
func Stdio(opts ...ConsoleOption) *Console {
	return NewConsole(os.Stdin, os.Stdout, opts...)
}

func (c *Console) sealed() {}

// Pull reads one line and parses it as a base-10 integer.
//
// Lines are NFKC-normalized and trimmed first, so full-width digits are
// accepted. Returns ErrClosed at end of input and *LiteralError for a line
// that does not parse.
func (c *Console) Pull(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if c.prompt != "" && c.w != nil {
		if _, err := io.WriteString(c.w, c.prompt); err != nil {
			return 0, fmt.Errorf("write prompt: %w", err)
		}
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return 0, fmt.Errorf("read console: %w", err)
		}
		return 0, ErrClosed
	}

	text := c.scanner.Text()
	v, err := strconv.ParseInt(strings.TrimSpace(norm.NFKC.String(text)), 10, 64)
	if err != nil {
		return 0, &LiteralError{Text: text, Err: err}
	}
	return v, nil
}

// Push writes v followed by a newline.
func (c *Console) Push(v int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprintln(c.w, v); err != nil {
		return fmt.Errorf("write console: %w", err)
	}
	return nil
}

// Close stops further reads and writes. The underlying reader and writer
// are not closed.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

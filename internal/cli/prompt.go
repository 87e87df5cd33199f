package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Prompter reads confirmation answers from the terminal with context-aware
// cancellation, so Ctrl-C during a reconcile session is honored even while a
// read is pending.
type Prompter struct {
	reader      *bufio.Reader
	writer      io.Writer
	readingLock sync.Mutex
}

// NewPrompter creates a prompter reading from and writing to the given streams.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		panic("reader cannot be nil")
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// readLine reads one line, respecting context cancellation. The underlying
// read goroutine may outlive a canceled call; the lock keeps reads ordered.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		p.readingLock.Lock()
		defer p.readingLock.Unlock()

		value, err := p.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && res.err != io.EOF {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Confirm asks a yes/no question and returns the answer. Empty input takes
// the default. Accepts s/sim and y/yes for affirmative.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "[s/N]"
	if defaultYes {
		hint = "[S/n]"
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" "+hint)); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return defaultYes, nil
	case "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

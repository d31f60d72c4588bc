package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNoTerminal       = errors.New("stdin is not a terminal; pass --password-stdin to read the password from stdin")
)

// passwordPrompter implements application.PasswordProvider for the CLI. With
// fromStdin it consumes the first line of in; otherwise it reads from the
// controlling terminal without echo and asks twice on first run.
type passwordPrompter struct {
	in        *inputReader
	terminal  *os.File
	prompt    io.Writer
	fromStdin bool
}

func (p *passwordPrompter) Password(ctx context.Context, firstRun bool) (string, error) {
	if p.fromStdin {
		line, err := p.in.ReadLine(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if p.terminal == nil || !term.IsTerminal(int(p.terminal.Fd())) {
		return "", ErrNoTerminal
	}

	label := "password: "
	if firstRun {
		label = "create your password: "
	}
	pw, err := p.read(ctx, label)
	if err != nil {
		return "", err
	}
	if !firstRun || pw == "" {
		return pw, nil
	}

	confirm, err := p.read(ctx, "confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != pw {
		return "", ErrPasswordMismatch
	}
	return pw, nil
}

// read prompts with echo disabled. On cancellation the terminal mode is
// restored before returning; the blocked ReadPassword is abandoned.
func (p *passwordPrompter) read(ctx context.Context, label string) (string, error) {
	fd := int(p.terminal.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("read terminal state: %w", err)
	}

	fmt.Fprint(p.prompt, label)

	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := term.ReadPassword(fd)
		ch <- result{b: b, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		fmt.Fprintln(p.prompt)
		return "", ctx.Err()
	case res := <-ch:
		fmt.Fprintln(p.prompt)
		if res.err != nil {
			return "", fmt.Errorf("read password: %w", res.err)
		}
		return string(res.b), nil
	}
}

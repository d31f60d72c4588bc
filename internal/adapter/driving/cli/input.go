package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// inputReader hands out stdin lines without tying the caller to a blocking
// read. A single goroutine owns the underlying reader; callers select on ctx,
// so an interrupt returns immediately even while stdin is idle.
type inputReader struct {
	r     *bufio.Reader
	once  sync.Once
	lines chan lineResult
	done  bool
}

func newInputReader(r io.Reader) *inputReader {
	return &inputReader{r: bufio.NewReader(r)}
}

func (in *inputReader) start() {
	in.lines = make(chan lineResult)
	go func() {
		defer close(in.lines)
		for {
			line, err := in.r.ReadString('\n')
			if line != "" || err != nil {
				in.lines <- lineResult{line: line, err: err}
			}
			if err != nil {
				return
			}
		}
	}()
}

// ReadLine returns the next line including its terminator. The final line of
// the stream may come back together with io.EOF; later calls return "" and
// io.EOF.
func (in *inputReader) ReadLine(ctx context.Context) (string, error) {
	in.once.Do(in.start)
	if in.done {
		return "", io.EOF
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-in.lines:
		if !ok {
			in.done = true
			return "", io.EOF
		}
		if res.err != nil {
			in.done = true
		}
		return res.line, res.err
	}
}

// ReadAll returns the rest of the stream.
func (in *inputReader) ReadAll(ctx context.Context) (string, error) {
	var b strings.Builder
	for {
		line, err := in.ReadLine(ctx)
		b.WriteString(line)
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

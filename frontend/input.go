package frontend

import (
	"bufio"
	"context"
	"io"
)

// lineReader reads lines in the background so a prompt can give up on
// context cancellation while the terminal read is still blocked.
type lineReader struct {
	lines chan string
	err   error
}

func newLineReader(ctx context.Context, in io.Reader) *lineReader {
	r := &lineReader{lines: make(chan string)}
	go func() {
		defer close(r.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case r.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		r.err = scanner.Err()
	}()
	return r
}

// next returns the next line, io.EOF once input is exhausted, or the
// context error if ctx ends first.
func (r *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			if r.err != nil {
				return "", r.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

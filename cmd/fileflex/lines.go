package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// lineReader reads input one line per request so a prompt can be abandoned
// when the context ends. Nothing reads the input between requests, which
// leaves the terminal free for a password prompt.
type lineReader struct {
	out     io.Writer
	scanner *bufio.Scanner

	mu      sync.Mutex
	pending chan lineResult
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineReader{out: out, scanner: scanner}
}

// ReadLine prints prompt and waits for the next line. io.EOF is returned
// once input is exhausted.
func (lr *lineReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(lr.out, prompt)
	}

	lr.mu.Lock()
	ch := lr.pending
	if ch == nil {
		ch = make(chan lineResult, 1)
		lr.pending = ch
		go func() {
			if lr.scanner.Scan() {
				ch <- lineResult{line: lr.scanner.Text()}
				return
			}
			err := lr.scanner.Err()
			if err == nil {
				err = io.EOF
			}
			ch <- lineResult{err: err}
		}()
	}
	lr.mu.Unlock()

	select {
	case <-ctx.Done():
		// the read stays pending and serves the next request
		return "", ctx.Err()
	case res := <-ch:
		lr.mu.Lock()
		lr.pending = nil
		lr.mu.Unlock()
		return strings.TrimRight(res.line, "\r"), res.err
	}
}

// Idle reports whether no read is outstanding.
func (lr *lineReader) Idle() bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.pending == nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalConfirmer asks on the terminal, listing every target path.
type terminalConfirmer struct {
	lines *lineReader
	out   io.Writer
}

func (c *terminalConfirmer) Confirm(ctx context.Context, title, message string, targets []string) (bool, error) {
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, message)
	for _, t := range targets {
		fmt.Fprintf(c.out, "  %s\n", t)
	}
	answer, err := c.lines.ReadLine(ctx, "Proceed? [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readPassword reads a password without echo when stdin is a terminal and
// no line read is outstanding.
func readPassword(ctx context.Context, lines *lineReader, out io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) || !lines.Idle() {
		return lines.ReadLine(ctx, prompt)
	}
	fmt.Fprint(out, prompt)
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

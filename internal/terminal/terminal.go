// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal reads credentials from the user's terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal; pass the value as a flag")

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in  io.Reader
	out io.Writer
	fd  int
	tty bool
	br  *bufio.Reader
}

// Stdio returns a Prompter bound to the process's stdin and stderr.
func Stdio() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{in: os.Stdin, out: os.Stderr, fd: fd, tty: term.IsTerminal(fd)}
}

// New returns a Prompter over arbitrary streams. Secrets are read as plain
// lines since there is no terminal to disable echo on.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, fd: -1}
}

// Interactive reports whether prompts go to a real terminal.
func (p *Prompter) Interactive() bool { return p.tty }

func (p *Prompter) reader() *bufio.Reader {
	if p.br == nil {
		p.br = bufio.NewReader(p.in)
	}
	return p.br
}

// Line prompts for a visible value.
func (p *Prompter) Line(label string) (string, error) {
	if p.fd >= 0 && !p.tty {
		return "", ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.reader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Secret prompts for a value without echoing it.
func (p *Prompter) Secret(label string) (string, error) {
	if p.fd < 0 {
		return p.Line(label)
	}
	if !p.tty {
		return "", ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ClearPreviousLines erases the last lines that held textLength characters,
// plus the line the cursor moved to after Enter.
func (p *Prompter) ClearPreviousLines(textLength int) {
	if !p.tty {
		return
	}
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	if lines < 1 {
		lines = 1
	}
	lines++
	for i := 0; i < lines; i++ {
		fmt.Fprint(p.out, "\r\x1b[2K")
		if i < lines-1 {
			fmt.Fprint(p.out, "\x1b[1A")
		}
	}
}

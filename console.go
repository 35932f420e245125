// Package main (console.go) :
// These methods are for the interaction with the user at the terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter : Ask a question and return the answer.
type prompter interface {
	ask(question string) (string, error)
}

// console : Structure for the interactive terminal
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// ask : Show question and read a line. The last line without a newline is also accepted.
func (c *console) ask(question string) (string, error) {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmed : Check whether the answer is yes.
func confirmed(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "s"
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var errInputClosed = errors.New("input closed")

// console reads answers line by line from the command input. A single console
// must be shared for a whole session, it buffers input.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(cmd *cobra.Command) *console {
	return &console{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", errInputClosed
		}
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) promptFloat(label string) (float64, error) {
	answer, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("please enter a valid number, got '%s'", answer)
	}
	return v, nil
}

func (c *console) promptInt(label string) (int64, error) {
	answer, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("please enter a valid number, got '%s'", answer)
	}
	return v, nil
}

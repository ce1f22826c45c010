package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned by PromptLine when input ends before a line is read
var ErrNoInput = errors.New("no input")

// PromptLine prints prompt to out and reads one line from in, trimmed of
// surrounding whitespace. Used when no interactive terminal is available.
func PromptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, PromptStyle.Render(prompt))

	line, err := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		_, _ = fmt.Fprintln(out)
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

// ProbeLine renders the verbose echo line for one probe outcome
func ProbeLine(endpoint string, reachable bool) string {
	if reachable {
		return ReachableStyle.Render("[+] " + endpoint + " - Accessible")
	}
	return UnreachableStyle.Render("[-] " + endpoint + " - Not accessible")
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ListBox is a titled box of plain lines, used in verbose mode for things
// like skipped pages or the reachable endpoints.
type ListBox struct {
	Title    string
	Lines    []string
	Width    int
	MaxLines int // 0 = unlimited
}

// NewListBox creates a list box
func NewListBox(title string, lines []string) *ListBox {
	return &ListBox{
		Title: title,
		Lines: lines,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (l *ListBox) SetWidth(width int) *ListBox {
	l.Width = width
	return l
}

// SetMaxLines limits the number of lines displayed
func (l *ListBox) SetMaxLines(max int) *ListBox {
	l.MaxLines = max
	return l
}

// Visible returns the lines to display, with a trailing marker when
// truncated.
func (l *ListBox) Visible() []string {
	lines := l.Lines
	if l.MaxLines > 0 && len(lines) > l.MaxLines {
		hidden := len(lines) - l.MaxLines
		lines = append(append([]string{}, lines[:l.MaxLines]...), fmt.Sprintf("... (%d more)", hidden))
	}
	if len(lines) == 0 {
		lines = []string{"(none)"}
	}
	return lines
}

// Render returns the styled list box as a string
func (l *ListBox) Render() string {
	width := clampWidth(l.Width)
	title := ListTitleStyle.Render(fmt.Sprintf("%s (%d)", l.Title, len(l.Lines)))
	content := ListContentStyle.Render(strings.Join(l.Visible(), "\n"))
	inner := lipgloss.JoinVertical(lipgloss.Left, title, "", content)
	return ListBoxStyle(width).MarginLeft(2).Render(inner)
}

// String implements fmt.Stringer
func (l *ListBox) String() string {
	return l.Render()
}

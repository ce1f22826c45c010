package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/argus/internal/directory"
)

// MaxRegionNameWidth is where region names are cut in the catalog table
const MaxRegionNameWidth = 20

// TruncateName cuts name to at most max runes
func TruncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max])
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderCatalog renders regions as a Code / Country / Count table followed
// by a totals line. Regions are rendered in the order given.
func RenderCatalog(regions []directory.Region) string {
	t := newTable("Code", "Country", "Count")
	total := 0
	for _, r := range regions {
		t.Row(r.Code, TruncateName(r.Name, MaxRegionNameWidth), strconv.Itoa(r.Count))
		total += r.Count
	}

	summary := StepNoteStyle.Render(fmt.Sprintf("  %d regions, %d cameras listed", len(regions), total))
	return t.Render() + "\n" + summary
}

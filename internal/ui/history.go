package ui

import (
	"strconv"
	"time"
)

// HistoryRow is one recorded scan as shown by the history table
type HistoryRow struct {
	Code        string
	Name        string
	LastScanned time.Time
	Pages       int
	Endpoints   int
	FailedPages int
	Reachable   *int // nil when never probed
	Output      string
}

// RenderHistory renders recorded scans as a table, in the order given
func RenderHistory(rows []HistoryRow) string {
	if len(rows) == 0 {
		return StepNoteStyle.Render("  No scans recorded yet. Run: argus scan")
	}

	t := newTable("Code", "Country", "Scanned", "Pages", "Cameras", "Failed", "Reachable", "Output")
	for _, r := range rows {
		reachable := "-"
		if r.Reachable != nil {
			reachable = strconv.Itoa(*r.Reachable)
		}
		scanned := "-"
		if !r.LastScanned.IsZero() {
			scanned = r.LastScanned.Local().Format("2006-01-02 15:04")
		}
		t.Row(
			r.Code,
			TruncateName(r.Name, MaxRegionNameWidth),
			scanned,
			strconv.Itoa(r.Pages),
			strconv.Itoa(r.Endpoints),
			strconv.Itoa(r.FailedPages),
			reachable,
			r.Output,
		)
	}
	return t.Render()
}

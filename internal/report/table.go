package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/crestline-bio/wfreport/internal/batch"
)

// Style selects the table framing. It is passed explicitly into each render
// call; there is no process-wide formatting state.
type Style string

const (
	// StyleGrid separates the header from the body with a rule.
	StyleGrid Style = "grid"
	// StylePlain emits aligned columns with no framing.
	StylePlain Style = "plain"
)

// RenderSummary writes the group-by-status counts as a table.
func RenderSummary(w io.Writer, counts GroupCounts, style Style) error {
	cols := counts.StatusColumns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, "Group Name")
	for _, s := range cols {
		header = append(header, string(s))
	}

	var rows [][]string
	for _, group := range counts.Groups() {
		row := make([]string, 0, len(cols)+1)
		row = append(row, group)
		for _, s := range cols {
			row = append(row, strconv.Itoa(counts[group][s]))
		}
		rows = append(rows, row)
	}
	return renderTable(w, header, rows, style)
}

// RenderDetail writes the per-workflow detail rows as a table.
func RenderDetail(w io.Writer, rows []DetailRow, style Style) error {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.ID, r.Name, r.Status, r.Start}
	}
	return renderTable(w, []string{"Workflow ID", "Workflow Name", "Status", "Start"}, cells, style)
}

// RenderBatches writes per-batch sizes and time spans as a table.
func RenderBatches(w io.Writer, infos []batch.Info, style Style) error {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{
			strconv.Itoa(info.Index),
			strconv.Itoa(info.Size),
			info.First.UTC().Format(time.RFC3339),
			info.Last.UTC().Format(time.RFC3339),
		}
	}
	return renderTable(w, []string{"Batch", "Workflows", "First Submission", "Last Submission"}, rows, style)
}

func renderTable(w io.Writer, header []string, rows [][]string, style Style) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	if style == StyleGrid {
		rules := make([]string, len(header))
		for i, h := range header {
			rules[i] = strings.Repeat("-", len(h))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(rules, "\t")); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

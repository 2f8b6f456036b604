// Package report aggregates query results into the operator-facing summary
// and detail views and renders them as tables.
package report

import (
	"sort"
	"time"

	"github.com/crestline-bio/wfreport/internal/domain"
)

// GroupNotSet is the sentinel group for workflows submitted without a
// job-group label.
const GroupNotSet = "<not set>"

const detailTimeLayout = "Mon, Jan 2, 2006 3:04 PM"

// GroupCounts maps job group to per-status counts.
type GroupCounts map[string]map[domain.Status]int

// Summarize groups the final result set by job group and status. Metadata,
// when present for a record, wins over the listing: its status may be more
// current and its labels richer. Records without a group label land under
// GroupNotSet.
func Summarize(records []domain.WorkflowRecord, metadatas map[string]*domain.WorkflowMetadata) GroupCounts {
	agg := make(GroupCounts)
	for _, w := range records {
		status := w.Status
		group := w.Label(domain.LabelJobGroup)
		if m := metadatas[w.ID]; m != nil {
			if m.Status != "" {
				status = m.Status
			}
			if g := m.Label(domain.LabelJobGroup); g != "" {
				group = g
			}
		}
		if group == "" {
			group = GroupNotSet
		}
		if agg[group] == nil {
			agg[group] = make(map[domain.Status]int)
		}
		agg[group][status]++
	}
	return agg
}

// Groups returns the group names in sorted order.
func (g GroupCounts) Groups() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusColumns returns every status present in the counts, canonical
// statuses first in their fixed order, then any server-specific statuses
// sorted by name.
func (g GroupCounts) StatusColumns() []domain.Status {
	seen := make(map[domain.Status]bool)
	for _, counts := range g {
		for s := range counts {
			seen[s] = true
		}
	}

	var cols []domain.Status
	for _, s := range domain.CanonicalStatuses {
		if seen[s] {
			cols = append(cols, s)
			delete(seen, s)
		}
	}
	var extra []domain.Status
	for s := range seen {
		extra = append(extra, s)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(cols, extra...)
}

// DetailRow is one workflow in the detail view. Missing fields render as
// empty strings rather than failing.
type DetailRow struct {
	ID     string
	Name   string
	Status string
	Start  string
}

// Detail projects records into display rows, preserving their order. Start
// times are rendered in loc; a nil loc means the process-local timezone.
func Detail(records []domain.WorkflowRecord, loc *time.Location) []DetailRow {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]DetailRow, len(records))
	for i, w := range records {
		row := DetailRow{
			ID:     w.ID,
			Name:   w.Name,
			Status: string(w.Status),
		}
		if !w.Start.IsZero() {
			row.Start = w.Start.In(loc).Format(detailTimeLayout)
		}
		rows[i] = row
	}
	return rows
}

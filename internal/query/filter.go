// Package query composes server-side fetching, batch clustering, and status
// narrowing into one deterministic retrieval pipeline.
package query

import (
	"time"

	"github.com/crestline-bio/wfreport/internal/batch"
	"github.com/crestline-bio/wfreport/internal/domain"
)

// Filter describes one query invocation. Constructed once per invocation
// and read-only afterwards.
type Filter struct {
	// Statuses narrows the final result set. Applied client side, after
	// batch selection.
	Statuses domain.StatusFilter

	// JobName and JobGroup become label selectors evaluated by the server.
	JobName  string
	JobGroup string

	// WorkflowID and WorkflowName are exact-match server-side filters.
	WorkflowID   string
	WorkflowName string

	// HoursAgo bounds submission time to at most N hours before now.
	// Zero or negative means no bound.
	HoursAgo int

	// BatchAgo, when set, selects the batch N steps before the most
	// recent one. BatchGap is the inactivity threshold between batches;
	// zero means batch.DefaultGap.
	BatchAgo *int
	BatchGap time.Duration
}

// LabelSelectors converts the optional job-name and job-group parameters
// into "key:value" selectors for the server's AND-combined label filter.
func LabelSelectors(jobName, jobGroup string) []string {
	var labels []string
	if jobName != "" {
		labels = append(labels, domain.LabelJobName+":"+jobName)
	}
	if jobGroup != "" {
		labels = append(labels, domain.LabelJobGroup+":"+jobGroup)
	}
	return labels
}

// SubmittedSince returns the RFC3339 UTC lower bound for records submitted
// at most hoursAgo hours before now, truncated to whole seconds. A
// non-positive hoursAgo means no bound and yields "".
func SubmittedSince(now time.Time, hoursAgo int) string {
	if hoursAgo <= 0 {
		return ""
	}
	bound := now.Add(-time.Duration(hoursAgo) * time.Hour).UTC().Truncate(time.Second)
	return bound.Format("2006-01-02T15:04:05Z")
}

func (f Filter) listRequest(now time.Time) ListRequest {
	req := ListRequest{
		Labels:         LabelSelectors(f.JobName, f.JobGroup),
		SubmittedAfter: SubmittedSince(now, f.HoursAgo),
	}
	if f.WorkflowID != "" {
		req.IDs = []string{f.WorkflowID}
	}
	if f.WorkflowName != "" {
		req.Names = []string{f.WorkflowName}
	}
	return req
}

func (f Filter) gap() time.Duration {
	if f.BatchGap <= 0 {
		return batch.DefaultGap
	}
	return f.BatchGap
}

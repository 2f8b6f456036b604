// Package domain defines the workflow records and status types shared by the
// query pipeline, server backends, and reporting layers.
package domain

import "time"

// Well-known label keys attached to submitted workflows. Operators assign
// these at submit time; the status and batch views filter and group on them.
const (
	LabelJobName  = "wfreport_job_name"
	LabelJobGroup = "wfreport_job_group"
)

// WorkflowRecord is one workflow execution as returned by the server's
// listing endpoint. Records are immutable once fetched and live only for the
// duration of a single query invocation.
type WorkflowRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Status     Status            `json:"status"`
	Submission time.Time         `json:"submission"`
	Start      time.Time         `json:"start,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`

	// Batch is the temporal cluster index assigned by batch.Assign.
	// Zero until clustering runs.
	Batch int `json:"batch,omitempty"`
}

// Label returns the value for key, or "" when the record carries no labels
// or the key is absent.
func (w WorkflowRecord) Label(key string) string {
	if w.Labels == nil {
		return ""
	}
	return w.Labels[key]
}

// WorkflowMetadata is the per-workflow detail fetched after listing. Its
// status and labels may be more current than the listing that produced the
// record.
type WorkflowMetadata struct {
	WorkflowRecord
	End time.Time `json:"end,omitempty"`
}

package query

import (
	"context"

	"github.com/crestline-bio/wfreport/internal/domain"
)

// WorkflowAPI is the execution-server capability the pipeline consumes.
// Implemented by the Cromwell HTTP backend and the Temporal visibility
// backend; tests use an in-memory stub.
type WorkflowAPI interface {
	ListWorkflows(ctx context.Context, req ListRequest) ([]domain.WorkflowRecord, error)
	WorkflowMetadata(ctx context.Context, id string) (*domain.WorkflowMetadata, error)
}

// ListRequest carries only the filters the server evaluates itself. Status
// narrowing is deliberately absent: batch selection must see the full status
// mix, so statuses are filtered client side after clustering.
type ListRequest struct {
	// IDs and Names are exact-match filters; empty means no restriction.
	IDs   []string
	Names []string

	// Labels are "key:value" selectors, AND-combined by the server.
	Labels []string

	// SubmittedAfter is an RFC3339 UTC lower bound on submission time,
	// or "" for no bound.
	SubmittedAfter string

	// IncludeSubworkflows asks the server to include child workflows.
	// The reporting views always leave this false.
	IncludeSubworkflows bool
}

// Package temporalapi adapts Temporal's visibility API to the pipeline's
// query.WorkflowAPI, for shops running their pipelines on a Temporal server
// instead of a Cromwell-style one.
package temporalapi

import (
	"context"
	"fmt"
	"strings"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
)

const defaultPageSize = 200

// Querier lists and describes workflow executions through a Temporal client.
type Querier struct {
	client   client.Client
	pageSize int
}

// New creates a Querier over the given Temporal client.
func New(c client.Client) *Querier {
	return &Querier{client: c, pageSize: defaultPageSize}
}

// ListWorkflows lists executions matching the server-side filters via the
// visibility API. Statuses are intentionally never part of the visibility
// query; the pipeline narrows them after clustering.
func (q *Querier) ListWorkflows(ctx context.Context, req query.ListRequest) ([]domain.WorkflowRecord, error) {
	visQuery, err := buildVisibilityQuery(req)
	if err != nil {
		return nil, err
	}

	var records []domain.WorkflowRecord
	var pageToken []byte
	for {
		resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
			Query:         visQuery,
			PageSize:      int32(q.pageSize),
			NextPageToken: pageToken,
		})
		if err != nil {
			return nil, fmt.Errorf("temporal: list workflows: %w", err)
		}

		for _, exec := range resp.Executions {
			rec := domain.WorkflowRecord{
				ID:     exec.Execution.WorkflowId,
				Status: statusFromExecution(exec.Status),
			}
			if exec.Type != nil {
				rec.Name = exec.Type.Name
			}
			if exec.StartTime != nil {
				rec.Submission = exec.StartTime.AsTime()
			}
			records = append(records, rec)
		}

		pageToken = resp.NextPageToken
		if len(pageToken) == 0 {
			break
		}
	}
	return records, nil
}

// WorkflowMetadata describes one execution.
func (q *Querier) WorkflowMetadata(ctx context.Context, id string) (*domain.WorkflowMetadata, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("temporal: describe workflow %s: %w", id, err)
	}

	info := desc.WorkflowExecutionInfo
	meta := &domain.WorkflowMetadata{
		WorkflowRecord: domain.WorkflowRecord{
			ID:     info.Execution.WorkflowId,
			Status: statusFromExecution(info.Status),
		},
	}
	if info.Type != nil {
		meta.Name = info.Type.Name
	}
	if info.StartTime != nil {
		meta.Submission = info.StartTime.AsTime()
		meta.Start = info.StartTime.AsTime()
	}
	if info.CloseTime != nil {
		meta.End = info.CloseTime.AsTime()
	}
	return meta, nil
}

// buildVisibilityQuery translates the server-side filters into Temporal's
// visibility query syntax. Label selectors become custom search attribute
// equality clauses.
func buildVisibilityQuery(req query.ListRequest) (string, error) {
	var clauses []string
	for _, id := range req.IDs {
		clauses = append(clauses, fmt.Sprintf("WorkflowId = %q", id))
	}
	for _, name := range req.Names {
		clauses = append(clauses, fmt.Sprintf("WorkflowType = %q", name))
	}
	for _, label := range req.Labels {
		key, value, ok := strings.Cut(label, ":")
		if !ok {
			return "", fmt.Errorf("temporal: bad label selector %q", label)
		}
		clauses = append(clauses, fmt.Sprintf("%s = %q", key, value))
	}
	if req.SubmittedAfter != "" {
		clauses = append(clauses, fmt.Sprintf("StartTime >= %q", req.SubmittedAfter))
	}
	if !req.IncludeSubworkflows {
		clauses = append(clauses, "ParentWorkflowId IS NULL")
	}
	return strings.Join(clauses, " AND "), nil
}

// statusFromExecution maps Temporal execution statuses onto the canonical
// reporting statuses. Statuses with no counterpart pass through under their
// Temporal name.
func statusFromExecution(s enumspb.WorkflowExecutionStatus) domain.Status {
	switch s {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING,
		enumspb.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return domain.StatusRunning
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return domain.StatusSucceeded
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return domain.StatusFailed
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED,
		enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return domain.StatusAborted
	default:
		return domain.Status(s.String())
	}
}

// Compile-time check.
var _ query.WorkflowAPI = (*Querier)(nil)

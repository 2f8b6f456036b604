// Package mcpserver exposes the workflow reporting pipeline via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/report"
)

// RegisterTools registers the workflow reporting MCP tools on the given
// server.
func RegisterTools(server *mcp.Server, p *query.Pipeline) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_workflows",
			Description: "List workflow runs filtered by status, submission window, labels, and submission batch",
		},
		listWorkflowsHandler(p),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "workflow_summary",
			Description: "Summarize workflow runs as job-group by status counts",
		},
		workflowSummaryHandler(p),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "workflow_detail",
			Description: "Get the metadata for a single workflow run",
		},
		workflowDetailHandler(p),
	)
}

type listInput struct {
	Running   bool `json:"running,omitempty"`
	Aborted   bool `json:"aborted,omitempty"`
	Failed    bool `json:"failed,omitempty"`
	Succeeded bool `json:"succeeded,omitempty"`

	JobName  string `json:"job_name,omitempty"`
	JobGroup string `json:"job_group,omitempty"`

	HoursAgo int  `json:"hours_ago,omitempty"`
	BatchAgo *int `json:"batch_ago,omitempty"`
	GapMins  int  `json:"gap_mins,omitempty"`
}

func (in listInput) filter() query.Filter {
	return query.Filter{
		Statuses: domain.StatusesFromFlags(in.Running, in.Aborted, in.Failed, in.Succeeded),
		JobName:  in.JobName,
		JobGroup: in.JobGroup,
		HoursAgo: in.HoursAgo,
		BatchAgo: in.BatchAgo,
		BatchGap: time.Duration(in.GapMins) * time.Minute,
	}
}

func listWorkflowsHandler(p *query.Pipeline) mcp.ToolHandlerFor[listInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
		records, err := p.Run(ctx, input.filter())
		if err != nil {
			return nil, nil, fmt.Errorf("list_workflows: %w", err)
		}
		return textResult(records)
	}
}

func workflowSummaryHandler(p *query.Pipeline) mcp.ToolHandlerFor[listInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
		records, err := p.Run(ctx, input.filter())
		if err != nil {
			return nil, nil, fmt.Errorf("workflow_summary: %w", err)
		}

		metadatas, err := p.FetchMetadata(ctx, records)
		if err != nil {
			return nil, nil, fmt.Errorf("workflow_summary: %w", err)
		}
		return textResult(report.Summarize(records, metadatas))
	}
}

type workflowIDInput struct {
	WorkflowID string `json:"workflow_id"`
}

func workflowDetailHandler(p *query.Pipeline) mcp.ToolHandlerFor[workflowIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input workflowIDInput) (*mcp.CallToolResult, any, error) {
		if input.WorkflowID == "" {
			return errorResult("workflow_id is required"), nil, nil
		}

		records, err := p.Run(ctx, query.Filter{WorkflowID: input.WorkflowID})
		if err != nil {
			return nil, nil, fmt.Errorf("workflow_detail: %w", err)
		}
		if len(records) == 0 {
			return errorResult("no workflow found with id " + input.WorkflowID), nil, nil
		}

		metadatas, err := p.FetchMetadata(ctx, records)
		if err != nil {
			return nil, nil, fmt.Errorf("workflow_detail: %w", err)
		}
		return textResult(metadatas[input.WorkflowID])
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

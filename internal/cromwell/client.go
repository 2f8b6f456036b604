// Package cromwell implements the workflow-server API over Cromwell-style
// REST query and metadata endpoints, satisfying query.WorkflowAPI.
package cromwell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/ratelimit"
)

// Client talks to a Cromwell-style workflow server.
type Client struct {
	base       string
	version    string
	token      string
	httpClient *http.Client
	limiter    *ratelimit.EndpointLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default instrumented HTTP client (for testing).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRates overrides the per-endpoint request rates.
func WithRates(rates ratelimit.EndpointRates) Option {
	return func(c *Client) { c.limiter = ratelimit.NewEndpointLimiter(rates) }
}

// New creates a client for the server at base (e.g. "http://localhost:8000")
// speaking the given API version (e.g. "v1").
func New(base, version string, opts ...Option) *Client {
	c := &Client{
		base:    base,
		version: version,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
		limiter: ratelimit.NewEndpointLimiter(ratelimit.DefaultEndpointRates()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queryResponse struct {
	Results []wireRecord `json:"results"`
	Total   int          `json:"totalResultsCount"`
}

type wireRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	Submission string            `json:"submission"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Labels     map[string]string `json:"labels"`
}

// ListWorkflows queries the server's listing endpoint with the given
// server-side filters.
func (c *Client) ListWorkflows(ctx context.Context, req query.ListRequest) ([]domain.WorkflowRecord, error) {
	if err := c.limiter.Wait(ctx, ratelimit.EndpointQuery); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("includeSubworkflows", strconv.FormatBool(req.IncludeSubworkflows))
	params.Add("additionalQueryResultFields", "labels")
	for _, id := range req.IDs {
		params.Add("id", id)
	}
	for _, name := range req.Names {
		params.Add("name", name)
	}
	for _, label := range req.Labels {
		params.Add("label", label)
	}
	if req.SubmittedAfter != "" {
		params.Set("submission", req.SubmittedAfter)
	}

	endpoint := fmt.Sprintf("%s/api/workflows/%s/query?%s", c.base, c.version, params.Encode())
	var resp queryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("cromwell: query workflows: %w", err)
	}

	records := make([]domain.WorkflowRecord, 0, len(resp.Results))
	for _, wire := range resp.Results {
		rec, err := wire.toRecord()
		if err != nil {
			return nil, fmt.Errorf("cromwell: workflow %s: %w", wire.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WorkflowMetadata fetches the per-workflow metadata document. Call-level
// detail is excluded; the reporting views only need top-level fields.
func (c *Client) WorkflowMetadata(ctx context.Context, id string) (*domain.WorkflowMetadata, error) {
	if err := c.limiter.Wait(ctx, ratelimit.EndpointMetadata); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/workflows/%s/%s/metadata?excludeKey=calls",
		c.base, c.version, url.PathEscape(id))
	var wire wireRecord
	if err := c.getJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("cromwell: metadata for %s: %w", id, err)
	}

	rec, err := wire.toRecord()
	if err != nil {
		return nil, fmt.Errorf("cromwell: metadata for %s: %w", id, err)
	}
	meta := &domain.WorkflowMetadata{WorkflowRecord: rec}
	if wire.End != "" {
		end, err := time.Parse(time.RFC3339, wire.End)
		if err != nil {
			return nil, fmt.Errorf("cromwell: metadata for %s: bad end time %q: %w", id, wire.End, err)
		}
		meta.End = end
	}
	return meta, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// toRecord converts a wire record, failing on malformed timestamps since the
// pipeline cannot sort or cluster without a valid submission time.
func (w wireRecord) toRecord() (domain.WorkflowRecord, error) {
	rec := domain.WorkflowRecord{
		ID:     w.ID,
		Name:   w.Name,
		Status: domain.Status(w.Status),
		Labels: w.Labels,
	}
	if w.Submission != "" {
		submission, err := time.Parse(time.RFC3339, w.Submission)
		if err != nil {
			return domain.WorkflowRecord{}, fmt.Errorf("bad submission time %q: %w", w.Submission, err)
		}
		rec.Submission = submission
	}
	if w.Start != "" {
		start, err := time.Parse(time.RFC3339, w.Start)
		if err != nil {
			return domain.WorkflowRecord{}, fmt.Errorf("bad start time %q: %w", w.Start, err)
		}
		rec.Start = start
	}
	return rec, nil
}

// Compile-time check.
var _ query.WorkflowAPI = (*Client)(nil)

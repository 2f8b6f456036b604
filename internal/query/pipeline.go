package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crestline-bio/wfreport/internal/batch"
	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/observability"
)

const defaultFetchConcurrency = 8

// Pipeline runs queries against a workflow server and shapes the results.
type Pipeline struct {
	api        WorkflowAPI
	log        *slog.Logger
	metrics    *observability.Metrics
	fetchLimit int
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records query and fetch counters on the given instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithFetchConcurrency bounds the metadata worker pool.
func WithFetchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.fetchLimit = n
		}
	}
}

// WithClock overrides the time source used for the submission window.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline over the given server backend.
func New(api WorkflowAPI, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		api:        api,
		log:        logger,
		fetchLimit: defaultFetchConcurrency,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one query: fetch candidates with the server-side filters,
// sort ascending by submission time, then optionally select one submission
// batch, then optionally narrow by status. The stage order is load bearing:
// batches are temporal clusters of all activity, so clustering must happen
// before any status narrowing.
func (p *Pipeline) Run(ctx context.Context, f Filter) ([]domain.WorkflowRecord, error) {
	queryID := uuid.NewString()

	req := f.listRequest(p.now())
	records, err := p.api.ListWorkflows(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if p.metrics != nil {
		p.metrics.RecordQuery(ctx)
		p.metrics.RecordWorkflowsListed(ctx, len(records))
	}
	p.log.Debug("listed workflows",
		"query_id", queryID, "count", len(records), "submitted_after", req.SubmittedAfter)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Submission.Before(records[j].Submission)
	})

	if f.BatchAgo != nil {
		records = batch.Assign(records, f.gap())
		target := batch.Count(records) - 1 - *f.BatchAgo
		p.log.Info("targeting submission batch",
			"query_id", queryID, "batch", target, "ago", *f.BatchAgo)
		records = batch.SelectAgo(records, *f.BatchAgo)
	}

	if !f.Statuses.IsUnrestricted() {
		kept := make([]domain.WorkflowRecord, 0, len(records))
		for _, r := range records {
			if f.Statuses.Matches(r.Status) {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	return records, nil
}

// FetchMetadata retrieves per-workflow metadata for the given records. The
// fetches are independent, so they run concurrently through a bounded worker
// pool; the first failure cancels the rest and fails the invocation.
func (p *Pipeline) FetchMetadata(ctx context.Context, records []domain.WorkflowRecord) (map[string]*domain.WorkflowMetadata, error) {
	out := make(map[string]*domain.WorkflowMetadata, len(records))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fetchLimit)
	for _, r := range records {
		g.Go(func() error {
			started := time.Now()
			m, err := p.api.WorkflowMetadata(gctx, r.ID)
			if err != nil {
				return fmt.Errorf("metadata for %s: %w", r.ID, err)
			}
			if p.metrics != nil {
				p.metrics.RecordMetadataLatency(gctx, time.Since(started))
			}
			mu.Lock()
			out[r.ID] = m
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

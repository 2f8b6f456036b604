package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
	"github.com/crestline-bio/wfreport/internal/testutil"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func ids(records []domain.WorkflowRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestRunSortsBySubmission(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{Records: []domain.WorkflowRecord{
		testutil.Record("c", domain.StatusRunning, base.Add(2*time.Minute), nil),
		testutil.Record("a", domain.StatusRunning, base, nil),
		testutil.Record("b", domain.StatusRunning, base.Add(time.Minute), nil),
	}}
	p := query.New(api, nil)

	got, err := p.Run(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, id := range ids(got) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{}
	p := query.New(api, nil)

	got, err := p.Run(context.Background(), query.Filter{BatchAgo: intPtr(0)})
	if err != nil {
		t.Fatalf("Run on empty input: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Run on empty input = %v, want empty", got)
	}
}

func TestRunBatchSelection(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{Records: []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusSucceeded, base, nil),
		testutil.Record("b", domain.StatusSucceeded, base.Add(2*time.Minute), nil),
		testutil.Record("c", domain.StatusSucceeded, base.Add(3*time.Minute), nil),
		testutil.Record("d", domain.StatusRunning, base.Add(10*time.Minute), nil),
		testutil.Record("e", domain.StatusRunning, base.Add(11*time.Minute), nil),
	}}
	p := query.New(api, nil)

	mostRecent, err := p.Run(context.Background(), query.Filter{BatchAgo: intPtr(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mostRecent) != 2 || mostRecent[0].ID != "d" || mostRecent[1].ID != "e" {
		t.Errorf("batch ago 0 = %v, want [d e]", ids(mostRecent))
	}

	previous, err := p.Run(context.Background(), query.Filter{BatchAgo: intPtr(1)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(previous) != 3 {
		t.Errorf("batch ago 1 = %v, want [a b c]", ids(previous))
	}

	overshoot, err := p.Run(context.Background(), query.Filter{BatchAgo: intPtr(5)})
	if err != nil {
		t.Fatalf("Run with overshoot: %v", err)
	}
	if len(overshoot) != 0 {
		t.Errorf("batch overshoot = %v, want empty", ids(overshoot))
	}
}

// Clustering must run over the full status mix before any status narrowing.
// Here a Running record bridges two Succeeded submissions: clustered over
// everything they form one batch, but clustered over the Succeeded records
// alone they would split in two and the query would silently drop the
// earlier submissions.
func TestRunClustersBeforeStatusFilter(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{Records: []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusSucceeded, base, nil),
		testutil.Record("b", domain.StatusRunning, base.Add(3*time.Minute), nil),
		testutil.Record("c", domain.StatusSucceeded, base.Add(6*time.Minute), nil),
	}}
	p := query.New(api, nil)

	got, err := p.Run(context.Background(), query.Filter{
		Statuses: domain.Subset(domain.StatusSucceeded),
		BatchAgo: intPtr(0),
		BatchGap: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("result = %v, want [a c] (one batch spanning the bridge record)", ids(got))
	}
}

func TestRunStatusNarrowing(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{Records: []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusSucceeded, base, nil),
		testutil.Record("b", domain.StatusFailed, base.Add(time.Minute), nil),
		testutil.Record("c", domain.StatusRunning, base.Add(2*time.Minute), nil),
	}}
	p := query.New(api, nil)

	got, err := p.Run(context.Background(), query.Filter{
		Statuses: domain.StatusesFromFlags(false, false, true, true),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("status narrowed = %v, want [a b]", ids(got))
	}

	// An explicit empty subset excludes everything; unrestricted keeps all.
	none, err := p.Run(context.Background(), query.Filter{Statuses: domain.Subset()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty subset = %v, want empty", ids(none))
	}

	all, err := p.Run(context.Background(), query.Filter{Statuses: domain.Unrestricted()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unrestricted = %v, want all three", ids(all))
	}
}

func TestRunServerSideFilters(t *testing.T) {
	t.Parallel()
	api := &testutil.StubAPI{Records: []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusRunning, base,
			map[string]string{domain.LabelJobGroup: "alpha"}),
	}}
	p := query.New(api, nil)

	_, err := p.Run(context.Background(), query.Filter{
		Statuses: domain.Subset(domain.StatusRunning),
		JobGroup: "alpha",
		HoursAgo: 24,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	calls := api.ListCalls()
	if len(calls) != 1 {
		t.Fatalf("ListWorkflows called %d times, want 1", len(calls))
	}
	req := calls[0]
	if req.IncludeSubworkflows {
		t.Error("request asked for subworkflows")
	}
	if len(req.Labels) != 1 || req.Labels[0] != domain.LabelJobGroup+":alpha" {
		t.Errorf("labels = %v", req.Labels)
	}
	if req.SubmittedAfter == "" {
		t.Error("expected a submission lower bound for HoursAgo=24")
	}
}

func TestRunPropagatesListError(t *testing.T) {
	t.Parallel()
	boom := errors.New("server unreachable")
	api := &testutil.StubAPI{ListErr: boom}
	p := query.New(api, nil)

	_, err := p.Run(context.Background(), query.Filter{})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want wrapped %v", err, boom)
	}
}

func TestFetchMetadata(t *testing.T) {
	t.Parallel()
	records := []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusRunning, base, nil),
		testutil.Record("b", domain.StatusRunning, base.Add(time.Minute), nil),
		testutil.Record("c", domain.StatusRunning, base.Add(2*time.Minute), nil),
	}
	api := &testutil.StubAPI{
		Records: records,
		Metadatas: map[string]*domain.WorkflowMetadata{
			"b": {WorkflowRecord: domain.WorkflowRecord{ID: "b", Status: domain.StatusSucceeded}},
		},
	}
	p := query.New(api, nil, query.WithFetchConcurrency(2))

	metas, err := p.FetchMetadata(context.Background(), records)
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("got %d metadatas, want 3", len(metas))
	}
	if metas["b"].Status != domain.StatusSucceeded {
		t.Errorf("metadata status for b = %q, want fresher Succeeded", metas["b"].Status)
	}
}

func TestFetchMetadataError(t *testing.T) {
	t.Parallel()
	boom := errors.New("metadata endpoint down")
	records := []domain.WorkflowRecord{
		testutil.Record("a", domain.StatusRunning, base, nil),
	}
	api := &testutil.StubAPI{Records: records, MetadataErr: boom}
	p := query.New(api, nil)

	_, err := p.FetchMetadata(context.Background(), records)
	if !errors.Is(err, boom) {
		t.Fatalf("FetchMetadata error = %v, want wrapped %v", err, boom)
	}
}

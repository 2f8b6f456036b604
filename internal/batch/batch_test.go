package batch

import (
	"testing"
	"time"

	"github.com/crestline-bio/wfreport/internal/domain"
)

func recordsAt(base time.Time, offsets ...time.Duration) []domain.WorkflowRecord {
	out := make([]domain.WorkflowRecord, len(offsets))
	for i, off := range offsets {
		out[i] = domain.WorkflowRecord{
			ID:         string(rune('a' + i)),
			Submission: base.Add(off),
		}
	}
	return out
}

func indices(records []domain.WorkflowRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Batch
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssign(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		offsets []time.Duration
		gap     time.Duration
		want    []int
	}{
		{
			name:    "two clusters split by a ten minute gap",
			offsets: []time.Duration{0, 2 * time.Minute, 3 * time.Minute, 10 * time.Minute, 11 * time.Minute},
			gap:     5 * time.Minute,
			want:    []int{0, 0, 0, 1, 1},
		},
		{
			name:    "gap exactly at threshold starts a new batch",
			offsets: []time.Duration{0, 5 * time.Minute},
			gap:     5 * time.Minute,
			want:    []int{0, 1},
		},
		{
			name:    "gap just under threshold stays in batch",
			offsets: []time.Duration{0, 5*time.Minute - time.Second},
			gap:     5 * time.Minute,
			want:    []int{0, 0},
		},
		{
			name:    "single record forms its own batch",
			offsets: []time.Duration{0},
			gap:     5 * time.Minute,
			want:    []int{0},
		},
		{
			name: "drifting sequence under threshold merges into one batch",
			offsets: []time.Duration{
				0, 4 * time.Minute, 8 * time.Minute, 12 * time.Minute, 16 * time.Minute,
			},
			gap:  5 * time.Minute,
			want: []int{0, 0, 0, 0, 0},
		},
		{
			name:    "zero gap falls back to the default",
			offsets: []time.Duration{0, time.Minute, 10 * time.Minute},
			gap:     0,
			want:    []int{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Assign(recordsAt(base, tt.offsets...), tt.gap)
			if !equalInts(indices(got), tt.want) {
				t.Errorf("Assign indices = %v, want %v", indices(got), tt.want)
			}
		})
	}
}

func TestAssignEmptyInput(t *testing.T) {
	t.Parallel()
	got := Assign(nil, 5*time.Minute)
	if len(got) != 0 {
		t.Errorf("Assign(nil) = %v, want empty", got)
	}
}

func TestAssignDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := recordsAt(base, 0, 10*time.Minute)
	_ = Assign(in, 5*time.Minute)
	if in[1].Batch != 0 {
		t.Error("Assign mutated its input slice")
	}
}

func TestAssignPartitionProperties(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gap := 5 * time.Minute
	records := Assign(recordsAt(base,
		0, time.Minute, 7*time.Minute, 8*time.Minute, 20*time.Minute, 40*time.Minute,
	), gap)

	// Indices are non-decreasing and start at 0.
	if records[0].Batch != 0 {
		t.Errorf("first batch index = %d, want 0", records[0].Batch)
	}
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if cur.Batch < prev.Batch || cur.Batch > prev.Batch+1 {
			t.Errorf("batch index jumped from %d to %d", prev.Batch, cur.Batch)
		}
		delta := cur.Submission.Sub(prev.Submission)
		if cur.Batch == prev.Batch && delta >= gap {
			t.Errorf("records %d and %d share a batch across a %v gap", i-1, i, delta)
		}
		if cur.Batch != prev.Batch && delta < gap {
			t.Errorf("records %d and %d split batches across a %v gap", i-1, i, delta)
		}
	}
}

func TestSelectAgo(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := Assign(recordsAt(base,
		0, 2*time.Minute, 3*time.Minute, 10*time.Minute, 11*time.Minute,
	), 5*time.Minute)

	mostRecent := SelectAgo(records, 0)
	if len(mostRecent) != 2 {
		t.Fatalf("SelectAgo(0) returned %d records, want 2", len(mostRecent))
	}
	for _, r := range mostRecent {
		if r.Batch != 1 {
			t.Errorf("SelectAgo(0) returned record from batch %d", r.Batch)
		}
	}

	previous := SelectAgo(records, 1)
	if len(previous) != 3 {
		t.Fatalf("SelectAgo(1) returned %d records, want 3", len(previous))
	}

	if got := SelectAgo(records, 2); len(got) != 0 {
		t.Errorf("SelectAgo beyond the earliest batch = %v, want empty", got)
	}
	if got := SelectAgo(records, 99); len(got) != 0 {
		t.Errorf("SelectAgo far beyond the earliest batch = %v, want empty", got)
	}
}

func TestSelectAgoEmptyInput(t *testing.T) {
	t.Parallel()
	if got := SelectAgo(nil, 0); len(got) != 0 {
		t.Errorf("SelectAgo(nil, 0) = %v, want empty", got)
	}
}

func TestCountAndDescribe(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := Assign(recordsAt(base,
		0, 2*time.Minute, 10*time.Minute, 30*time.Minute, 31*time.Minute,
	), 5*time.Minute)

	if got := Count(records); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}

	infos := Describe(records)
	if len(infos) != 3 {
		t.Fatalf("Describe returned %d batches, want 3", len(infos))
	}
	wantSizes := []int{2, 1, 2}
	total := 0
	for i, info := range infos {
		if info.Index != i {
			t.Errorf("batch %d has index %d", i, info.Index)
		}
		if info.Size != wantSizes[i] {
			t.Errorf("batch %d size = %d, want %d", i, info.Size, wantSizes[i])
		}
		if info.Last.Before(info.First) {
			t.Errorf("batch %d last %v before first %v", i, info.Last, info.First)
		}
		total += info.Size
	}
	if total != len(records) {
		t.Errorf("batches cover %d records, want %d", total, len(records))
	}

	if Count(nil) != 0 {
		t.Error("Count(nil) should be 0")
	}
	if Describe(nil) != nil {
		t.Error("Describe(nil) should be nil")
	}
}

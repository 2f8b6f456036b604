// Package batch clusters workflow submissions into temporally contiguous
// batches. A batch is a run of submissions where every consecutive pair is
// separated by less than the gap threshold; a gap at or above the threshold
// starts a new batch.
package batch

import (
	"time"

	"github.com/crestline-bio/wfreport/internal/domain"
)

// DefaultGap is the inactivity threshold that separates two batches.
const DefaultGap = 5 * time.Minute

// Assign walks records already sorted ascending by submission time and
// assigns each a batch index, starting at 0 for the earliest batch. The
// input slice is not modified.
//
// The gap is measured between consecutive records, not from the first record
// of the batch. A slow drip of submissions each just under the threshold
// apart therefore collapses into a single arbitrarily long batch.
func Assign(records []domain.WorkflowRecord, gap time.Duration) []domain.WorkflowRecord {
	if gap <= 0 {
		gap = DefaultGap
	}

	out := make([]domain.WorkflowRecord, len(records))
	idx := 0
	var prev time.Time
	for i, r := range records {
		if i > 0 && r.Submission.Sub(prev) >= gap {
			idx++
		}
		r.Batch = idx
		out[i] = r
		prev = r.Submission
	}
	return out
}

// SelectAgo returns the records in the batch n steps before the most recent
// one: n=0 is the batch containing the latest submission, n=1 the one before
// it, and so on. Empty input or a request further back than the earliest
// batch yields an empty result, never an error.
func SelectAgo(records []domain.WorkflowRecord, n int) []domain.WorkflowRecord {
	if len(records) == 0 {
		return nil
	}

	target := maxIndex(records) - n
	if target < 0 {
		return nil
	}

	var out []domain.WorkflowRecord
	for _, r := range records {
		if r.Batch == target {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of batches present in assigned records.
func Count(records []domain.WorkflowRecord) int {
	if len(records) == 0 {
		return 0
	}
	return maxIndex(records) + 1
}

// Info summarizes one batch for display.
type Info struct {
	Index int
	Size  int
	First time.Time
	Last  time.Time
}

// Describe returns a per-batch summary of assigned records, ordered by
// batch index.
func Describe(records []domain.WorkflowRecord) []Info {
	if len(records) == 0 {
		return nil
	}

	infos := make([]Info, Count(records))
	for i := range infos {
		infos[i].Index = i
	}
	for _, r := range records {
		info := &infos[r.Batch]
		if info.Size == 0 || r.Submission.Before(info.First) {
			info.First = r.Submission
		}
		if r.Submission.After(info.Last) {
			info.Last = r.Submission
		}
		info.Size++
	}
	return infos
}

func maxIndex(records []domain.WorkflowRecord) int {
	max := 0
	for _, r := range records {
		if r.Batch > max {
			max = r.Batch
		}
	}
	return max
}

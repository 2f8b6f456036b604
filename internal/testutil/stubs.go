// Package testutil provides an in-memory workflow server stub for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/crestline-bio/wfreport/internal/domain"
	"github.com/crestline-bio/wfreport/internal/query"
)

// StubAPI satisfies query.WorkflowAPI from in-memory records. It emulates
// the server-side filters (ids, names, labels, submission bound) so pipeline
// tests exercise realistic listing behavior, and records every ListRequest
// it receives.
type StubAPI struct {
	Records   []domain.WorkflowRecord
	Metadatas map[string]*domain.WorkflowMetadata

	// ListErr and MetadataErr, when set, fail the corresponding call.
	ListErr     error
	MetadataErr error

	mu        sync.Mutex
	listCalls []query.ListRequest
}

// ListCalls returns a copy of every ListRequest received so far.
func (s *StubAPI) ListCalls() []query.ListRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]query.ListRequest, len(s.listCalls))
	copy(out, s.listCalls)
	return out
}

func (s *StubAPI) ListWorkflows(_ context.Context, req query.ListRequest) ([]domain.WorkflowRecord, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, req)
	s.mu.Unlock()

	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var bound time.Time
	if req.SubmittedAfter != "" {
		parsed, err := time.Parse(time.RFC3339, req.SubmittedAfter)
		if err != nil {
			return nil, fmt.Errorf("stub: bad submission bound %q: %w", req.SubmittedAfter, err)
		}
		bound = parsed
	}

	var out []domain.WorkflowRecord
	for _, r := range s.Records {
		if len(req.IDs) > 0 && !contains(req.IDs, r.ID) {
			continue
		}
		if len(req.Names) > 0 && !contains(req.Names, r.Name) {
			continue
		}
		if !matchesLabels(r, req.Labels) {
			continue
		}
		if !bound.IsZero() && r.Submission.Before(bound) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *StubAPI) WorkflowMetadata(_ context.Context, id string) (*domain.WorkflowMetadata, error) {
	if s.MetadataErr != nil {
		return nil, s.MetadataErr
	}
	if m, ok := s.Metadatas[id]; ok {
		return m, nil
	}
	// Fall back to the listing record so tests only need Metadatas for
	// cases where metadata diverges from the listing.
	for _, r := range s.Records {
		if r.ID == id {
			return &domain.WorkflowMetadata{WorkflowRecord: r}, nil
		}
	}
	return nil, fmt.Errorf("stub: no workflow %s", id)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func matchesLabels(r domain.WorkflowRecord, selectors []string) bool {
	for _, sel := range selectors {
		key, value, ok := strings.Cut(sel, ":")
		if !ok {
			return false
		}
		if r.Label(key) != value {
			return false
		}
	}
	return true
}

// Record builds a WorkflowRecord for tests.
func Record(id string, status domain.Status, submission time.Time, labels map[string]string) domain.WorkflowRecord {
	return domain.WorkflowRecord{
		ID:         id,
		Name:       "wf_" + id,
		Status:     status,
		Submission: submission,
		Start:      submission.Add(30 * time.Second),
		Labels:     labels,
	}
}

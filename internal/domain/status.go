package domain

// Status is a workflow execution status as reported by the server. The set
// is open ended: servers may report states beyond the four canonical ones,
// and those pass through the pipeline untouched.
type Status string

const (
	StatusRunning   Status = "Running"
	StatusAborted   Status = "Aborted"
	StatusFailed    Status = "Failed"
	StatusSucceeded Status = "Succeeded"
)

// CanonicalStatuses is the fixed reporting order for the statuses operators
// can opt into on the command line.
var CanonicalStatuses = []Status{StatusRunning, StatusAborted, StatusFailed, StatusSucceeded}

func (s Status) Known() bool {
	switch s {
	case StatusRunning, StatusAborted, StatusFailed, StatusSucceeded:
		return true
	}
	return false
}

// StatusFilter is either unrestricted (match every status, including ones
// the server introduces later) or an explicit subset. The two are distinct
// at the type level: an explicit empty subset matches nothing, which is not
// the same as no filter at all.
type StatusFilter struct {
	subset []Status // nil means unrestricted
}

// Unrestricted returns the filter that matches every status.
func Unrestricted() StatusFilter {
	return StatusFilter{}
}

// Subset returns a filter matching exactly the given statuses. Subset()
// with no arguments is a valid filter that matches nothing.
func Subset(statuses ...Status) StatusFilter {
	s := make([]Status, len(statuses))
	copy(s, statuses)
	return StatusFilter{subset: s}
}

// StatusesFromFlags collapses the four opt-in reporting flags into a
// StatusFilter. All flags false means the operator wants everything, so the
// result is unrestricted rather than an empty subset. Any flag true selects
// exactly the flagged statuses, always in canonical order.
func StatusesFromFlags(running, aborted, failed, succeeded bool) StatusFilter {
	if !running && !aborted && !failed && !succeeded {
		return Unrestricted()
	}
	subset := make([]Status, 0, 4)
	if running {
		subset = append(subset, StatusRunning)
	}
	if aborted {
		subset = append(subset, StatusAborted)
	}
	if failed {
		subset = append(subset, StatusFailed)
	}
	if succeeded {
		subset = append(subset, StatusSucceeded)
	}
	return StatusFilter{subset: subset}
}

// IsUnrestricted reports whether the filter matches every status.
func (f StatusFilter) IsUnrestricted() bool {
	return f.subset == nil
}

// Statuses returns the explicit subset, or nil when unrestricted.
func (f StatusFilter) Statuses() []Status {
	if f.subset == nil {
		return nil
	}
	out := make([]Status, len(f.subset))
	copy(out, f.subset)
	return out
}

// Matches reports whether s passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	if f.subset == nil {
		return true
	}
	for _, want := range f.subset {
		if s == want {
			return true
		}
	}
	return false
}

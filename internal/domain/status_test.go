package domain

import "testing"

func TestStatusesFromFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                                string
		running, aborted, failed, succeeded bool
		wantUnrestricted                    bool
		want                                []Status
	}{
		{name: "all false is unrestricted", wantUnrestricted: true},
		{name: "running only", running: true, want: []Status{StatusRunning}},
		{name: "succeeded only", succeeded: true, want: []Status{StatusSucceeded}},
		{name: "all four in canonical order", running: true, aborted: true, failed: true, succeeded: true,
			want: []Status{StatusRunning, StatusAborted, StatusFailed, StatusSucceeded}},
		{name: "failed and aborted keep canonical order", aborted: true, failed: true,
			want: []Status{StatusAborted, StatusFailed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := StatusesFromFlags(tt.running, tt.aborted, tt.failed, tt.succeeded)
			if got.IsUnrestricted() != tt.wantUnrestricted {
				t.Fatalf("IsUnrestricted() = %v, want %v", got.IsUnrestricted(), tt.wantUnrestricted)
			}
			statuses := got.Statuses()
			if len(statuses) != len(tt.want) {
				t.Fatalf("Statuses() = %v, want %v", statuses, tt.want)
			}
			for i := range tt.want {
				if statuses[i] != tt.want[i] {
					t.Errorf("Statuses()[%d] = %q, want %q", i, statuses[i], tt.want[i])
				}
			}
		})
	}
}

func TestStatusFilterMatches(t *testing.T) {
	t.Parallel()

	unrestricted := Unrestricted()
	if !unrestricted.Matches(StatusRunning) || !unrestricted.Matches(Status("WaitingForQueueSpace")) {
		t.Error("unrestricted filter should match every status, including unknown ones")
	}

	subset := Subset(StatusFailed, StatusAborted)
	if !subset.Matches(StatusFailed) {
		t.Error("subset should match a member status")
	}
	if subset.Matches(StatusRunning) {
		t.Error("subset should not match a non-member status")
	}
}

func TestEmptySubsetIsNotUnrestricted(t *testing.T) {
	t.Parallel()

	empty := Subset()
	if empty.IsUnrestricted() {
		t.Fatal("explicit empty subset must not be unrestricted")
	}
	if empty.Matches(StatusRunning) {
		t.Error("explicit empty subset must match nothing")
	}
	if empty.Statuses() == nil {
		t.Error("explicit empty subset should report a non-nil empty set")
	}
}

func TestStatusKnown(t *testing.T) {
	t.Parallel()
	for _, s := range CanonicalStatuses {
		if !s.Known() {
			t.Errorf("canonical status %q should be known", s)
		}
	}
	if Status("OnHold").Known() {
		t.Error("server-specific status should not be known")
	}
}

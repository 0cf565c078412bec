package extrasync

import (
	"errors"
	"testing"
	"time"
)

type captureNotifier struct {
	notices []Notice
}

func (c *captureNotifier) Notify(n Notice) { c.notices = append(c.notices, n) }

func newTestStore(t *testing.T) (*Store, *captureNotifier) {
	t.Helper()
	n := &captureNotifier{}
	return NewStore(n, nil), n
}

func keyOf(videoId string) ExtraKey {
	return ExtraKey{MediaType: "movie", MediaId: 42, ExtraType: "trailer", VideoId: videoId}
}

// TestStore_DownloadThenSnapshot verifies the scenario: click download on a
// job with status none sets queued synchronously; a later snapshot reporting
// downloading advances it; a final snapshot reporting downloaded settles it
// with no leftover queued marker.
func TestStore_DownloadThenSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	s.Load([]ExtraRecord{rec("x", ExtraNone)})

	started, err := s.BeginDownload(keyOf("x"))
	if err != nil || !started {
		t.Fatalf("expected download to start, got started=%v err=%v", started, err)
	}
	if got, _ := s.Get(keyOf("x")); got.Status != ExtraQueued {
		t.Fatalf("expected synchronous queued state, got %s", got.Status)
	}

	s.FinishDownload(keyOf("x"), nil)
	s.ApplySnapshot([]StatusUpdate{{ExternalId: "x", Status: "downloading"}})
	if got, _ := s.Get(keyOf("x")); got.Status != ExtraDownloading {
		t.Fatalf("expected downloading after snapshot, got %s", got.Status)
	}

	s.ApplySnapshot([]StatusUpdate{{ExternalId: "x", Status: "downloaded"}})
	got, _ := s.Get(keyOf("x"))
	if got.Status != ExtraDownloaded {
		t.Fatalf("expected exactly downloaded, got %s", got.Status)
	}
	if len(s.pending) != 0 {
		t.Fatal("no in-flight marker may remain")
	}
}

// TestStore_DownloadFailureRollsBackExactly verifies failure returns the
// record to its exact pre-click value, not a default.
func TestStore_DownloadFailureRollsBackExactly(t *testing.T) {
	s, n := newTestStore(t)
	prior := rec("x", ExtraFailed)
	prior.Reason = "quota exceeded"
	s.Load([]ExtraRecord{prior})

	if started, _ := s.BeginDownload(keyOf("x")); !started {
		t.Fatal("expected download to start")
	}
	s.FinishDownload(keyOf("x"), errors.New("connection refused"))

	got, ok := s.Get(keyOf("x"))
	if !ok {
		t.Fatal("record vanished on rollback")
	}
	if got != prior {
		t.Fatalf("rollback not exact: got %+v want %+v", got, prior)
	}
	if len(n.notices) != 1 || n.notices[0].Success {
		t.Fatalf("expected one failure notice, got %+v", n.notices)
	}
}

// TestStore_DownloadFailureRemovesSyntheticEntry verifies that a speculative
// entry created for an unknown key disappears when the start request fails.
func TestStore_DownloadFailureRemovesSyntheticEntry(t *testing.T) {
	s, _ := newTestStore(t)
	s.Load(nil)

	if started, _ := s.BeginDownload(keyOf("new")); !started {
		t.Fatal("expected synthetic entry to be created")
	}
	if got, ok := s.Get(keyOf("new")); !ok || got.Status != ExtraQueued {
		t.Fatal("synthetic entry missing or not queued")
	}
	s.FinishDownload(keyOf("new"), errors.New("boom"))
	if _, ok := s.Get(keyOf("new")); ok {
		t.Fatal("synthetic entry should be removed on failure")
	}
}

func TestStore_DownloadBlockedStates(t *testing.T) {
	for _, st := range []ExtraStatus{ExtraDownloaded, ExtraDownloading, ExtraExists, ExtraQueued, ExtraDeleting} {
		s, _ := newTestStore(t)
		s.Load([]ExtraRecord{rec("x", st)})
		started, err := s.BeginDownload(keyOf("x"))
		if err != nil {
			t.Fatal(err)
		}
		if started {
			t.Fatalf("download must be a no-op for %s", st)
		}
		if got, _ := s.Get(keyOf("x")); got.Status != st {
			t.Fatalf("status changed for blocked state %s", st)
		}
	}
}

// TestStore_DeleteRejectedByTransitionTable verifies optimistic deletes are
// gated by the status transition table: an in-flight download or an already
// missing record cannot enter the deleting state.
func TestStore_DeleteRejectedByTransitionTable(t *testing.T) {
	for _, st := range []ExtraStatus{ExtraDownloading, ExtraMissing} {
		s, _ := newTestStore(t)
		s.Load([]ExtraRecord{rec("x", st)})
		if err := s.BeginDelete(keyOf("x")); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition for %s, got %v", st, err)
		}
		if got, _ := s.Get(keyOf("x")); got.Status != st {
			t.Fatalf("status changed for refused delete from %s", st)
		}
	}
}

func TestStore_OneMutationPerKey(t *testing.T) {
	s, _ := newTestStore(t)
	s.Load([]ExtraRecord{rec("x", ExtraNone)})
	if _, err := s.BeginDownload(keyOf("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BeginDownload(keyOf("x")); !errors.Is(err, ErrMutationPending) {
		t.Fatalf("expected ErrMutationPending, got %v", err)
	}
	if err := s.BeginDelete(keyOf("x")); !errors.Is(err, ErrMutationPending) {
		t.Fatalf("expected ErrMutationPending, got %v", err)
	}
}

// TestStore_DeleteFlow verifies the transitional deleting state, the
// terminal missing state on success, and exact restore on failure.
func TestStore_DeleteFlow(t *testing.T) {
	s, n := newTestStore(t)
	prior := rec("x", ExtraDownloaded)
	s.Load([]ExtraRecord{prior})

	if err := s.BeginDelete(keyOf("x")); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(keyOf("x")); got.Status != ExtraDeleting {
		t.Fatalf("expected deleting, got %s", got.Status)
	}
	s.FinishDelete(keyOf("x"), errors.New("io error"))
	if got, _ := s.Get(keyOf("x")); got != prior {
		t.Fatalf("expected exact restore, got %+v", got)
	}
	if len(n.notices) != 1 {
		t.Fatalf("expected one notice, got %d", len(n.notices))
	}

	if err := s.BeginDelete(keyOf("x")); err != nil {
		t.Fatal(err)
	}
	s.FinishDelete(keyOf("x"), nil)
	if got, _ := s.Get(keyOf("x")); got.Status != ExtraMissing {
		t.Fatalf("expected missing, got %s", got.Status)
	}
}

// TestStore_UnbanShapes verifies blacklist-shaped entries are deleted while
// extras-shaped entries only have their status fields cleared.
func TestStore_UnbanShapes(t *testing.T) {
	s, _ := newTestStore(t)
	banned := rec("b", ExtraRejected)
	banned.BannedAt = time.Now()
	extra := rec("e", ExtraRejected)
	extra.Reason = "banned by user"
	s.Load([]ExtraRecord{banned, extra})

	if err := s.CompleteUnban(banned.Key()); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(banned.Key()); ok {
		t.Fatal("blacklist-shaped entry should be deleted")
	}

	if err := s.CompleteUnban(extra.Key()); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get(extra.Key())
	if !ok {
		t.Fatal("extras-shaped entry should survive")
	}
	if got.Status != ExtraNone || got.Reason != "" {
		t.Fatalf("expected cleared status fields, got %+v", got)
	}
}

// TestStore_FailureNoticeIsEdgeTriggered verifies two consecutive failed
// snapshots for the same key produce exactly one notice.
func TestStore_FailureNoticeIsEdgeTriggered(t *testing.T) {
	s, n := newTestStore(t)
	s.Load([]ExtraRecord{rec("x", ExtraDownloading)})

	snap := []StatusUpdate{{ExternalId: "x", Status: "failed", Reason: "404 from host"}}
	s.ApplySnapshot(snap)
	s.ApplySnapshot(snap)

	if len(n.notices) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(n.notices))
	}
	if n.notices[0].Message != "404 from host" {
		t.Fatalf("notice should carry the failure reason, got %q", n.notices[0].Message)
	}
}

// TestStore_SnapshotRegressionApplied verifies the feed is trusted when a
// snapshot regresses a status.
func TestStore_SnapshotRegressionApplied(t *testing.T) {
	s, _ := newTestStore(t)
	s.Load([]ExtraRecord{rec("x", ExtraDownloaded)})
	s.ApplySnapshot([]StatusUpdate{{ExternalId: "x", Status: "queued"}})
	if got, _ := s.Get(keyOf("x")); got.Status != ExtraQueued {
		t.Fatalf("expected regression to apply, got %s", got.Status)
	}
}

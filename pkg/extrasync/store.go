package extrasync

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrMutationPending is returned when a key already has an optimistic
	// mutation in flight; only one is modeled per identity.
	ErrMutationPending = errors.New("mutation already pending for key")
	// ErrNotFound is returned when no record matches the key.
	ErrNotFound = errors.New("extra not found")
	// ErrInvalidTransition is returned when the record's current status does
	// not admit the requested optimistic transition.
	ErrInvalidTransition = errors.New("transition not allowed from current status")
)

// StatusUpdate is one entry of a download-queue snapshot, matched against
// local records by external video id.
type StatusUpdate struct {
	ExternalId string `json:"externalId"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

type mutationKind int

const (
	mutationDownload mutationKind = iota
	mutationDelete
)

// pendingMutation remembers everything needed to reverse an optimistic
// change to the exact pre-mutation value, never a default.
type pendingMutation struct {
	kind        mutationKind
	prior       ExtraRecord
	synthesized bool
}

// Store is the keyed collection of ExtraRecords for one owning view. All
// writes funnel through its mutation and reconciliation entry points; there
// are no independent read-merge-write paths. Methods are serialized by a
// mutex, so updates land in call order.
type Store struct {
	mu       sync.Mutex
	list     []ExtraRecord
	pending  map[ExtraKey]pendingMutation
	notifier Notifier
	log      *log.Logger
}

// NewStore creates an empty Store. The notifier receives transient notices
// for rollbacks and edge-triggered failures; it may be nil. The logger may
// be nil as well.
func NewStore(notifier Notifier, l *log.Logger) *Store {
	return &Store{
		pending:  make(map[ExtraKey]pendingMutation),
		notifier: notifier,
		log:      l,
	}
}

// Load replaces the collection with freshly-listed records, dropping any
// in-flight mutation state. Used when the owning view (re)loads its extras.
func (s *Store) Load(records []ExtraRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append([]ExtraRecord(nil), records...)
	s.pending = make(map[ExtraKey]pendingMutation)
}

// Records returns a copy of the collection in presentation order.
func (s *Store) Records() []ExtraRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ExtraRecord(nil), s.list...)
}

// Get returns the record for key.
func (s *Store) Get(key ExtraKey) (ExtraRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(key); i >= 0 {
		return s.list[i], true
	}
	return ExtraRecord{}, false
}

func (s *Store) index(key ExtraKey) int {
	for i := range s.list {
		if s.list[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) notify(n Notice) {
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

// BeginDownload applies the speculative "queued" state for a user download
// action. Records whose status does not admit the queued transition (already
// downloaded, downloading, existing, queued or mid-delete) are left alone
// and the action is reported as not started. When no record matches the key
// a synthetic entry is appended so the view shows the job immediately.
func (s *Store) BeginDownload(key ExtraKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[key]; busy {
		return false, ErrMutationPending
	}
	i := s.index(key)
	if i < 0 {
		s.list = append(s.list, ExtraRecord{
			MediaType:  key.MediaType,
			MediaId:    key.MediaId,
			ExtraType:  key.ExtraType,
			ExtraTitle: key.ExtraTitle,
			VideoId:    key.VideoId,
			Status:     ExtraQueued,
		})
		s.pending[key] = pendingMutation{kind: mutationDownload, synthesized: true}
		return true, nil
	}
	if !s.list[i].Status.CanTransition(ExtraQueued) {
		return false, nil
	}
	s.pending[key] = pendingMutation{kind: mutationDownload, prior: s.list[i]}
	s.list[i].Status = ExtraQueued
	s.list[i].Reason = ""
	return true, nil
}

// FinishDownload resolves the optimistic download mutation for key. On
// request failure a synthesized entry is removed, any other entry returns to
// its exact pre-click value, and a transient error notice is posted. On
// success the speculative "queued" state stands until a snapshot advances it.
func (s *Store) FinishDownload(key ExtraKey, reqErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.pending[key]
	if !ok || pm.kind != mutationDownload {
		return
	}
	delete(s.pending, key)
	if reqErr == nil {
		return
	}
	if i := s.index(key); i >= 0 {
		if pm.synthesized {
			s.list = append(s.list[:i], s.list[i+1:]...)
		} else {
			s.list[i] = pm.prior
		}
	}
	s.notify(Notice{Message: fmt.Sprintf("Download failed to start: %s", reqErr), Success: false})
}

// BeginDelete applies the transitional "deleting" state, preserving the
// prior record for rollback. Statuses that do not admit the transition,
// such as an in-flight download, refuse with ErrInvalidTransition.
func (s *Store) BeginDelete(key ExtraKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[key]; busy {
		return ErrMutationPending
	}
	i := s.index(key)
	if i < 0 {
		return ErrNotFound
	}
	if !s.list[i].Status.CanTransition(ExtraDeleting) {
		return ErrInvalidTransition
	}
	s.pending[key] = pendingMutation{kind: mutationDelete, prior: s.list[i]}
	s.list[i].Status = ExtraDeleting
	return nil
}

// FinishDelete resolves the optimistic delete mutation for key. Success
// settles the record into the terminal "missing" state; failure restores the
// preserved prior record and posts a notice.
func (s *Store) FinishDelete(key ExtraKey, reqErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.pending[key]
	if !ok || pm.kind != mutationDelete {
		return
	}
	delete(s.pending, key)
	i := s.index(key)
	if i < 0 {
		return
	}
	if reqErr != nil {
		s.list[i] = pm.prior
		s.notify(Notice{Message: fmt.Sprintf("Delete failed: %s", reqErr), Success: false})
		return
	}
	s.list[i].Status = ExtraMissing
	s.list[i].Reason = ""
}

// CompleteUnban applies a successful blacklist-removal. Blacklist-shaped
// entries are deleted from the collection; extras-shaped entries only have
// their status fields cleared.
func (s *Store) CompleteUnban(key ExtraKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(key)
	if i < 0 {
		return ErrNotFound
	}
	if s.list[i].BlacklistShaped() {
		s.list = append(s.list[:i], s.list[i+1:]...)
		return nil
	}
	s.list[i].Status = ExtraNone
	s.list[i].Reason = ""
	return nil
}

// ApplySnapshot reconciles an authoritative queue snapshot into the
// collection, matching local records by external video id. Matching entries
// with a differing status get the snapshot status and reason; entries absent
// from the snapshot stay untouched. Entering failed or rejected from a
// non-failure state emits exactly one notice with the failure reason, so
// identical subsequent snapshots do not repeat it.
func (s *Store) ApplySnapshot(updates []StatusUpdate) int {
	s.mu.Lock()
	var notices []Notice
	changed := MergeSnapshot(s.list, updates,
		func(r *ExtraRecord) string { return r.VideoId },
		func(u *StatusUpdate) string { return u.ExternalId },
		func(r *ExtraRecord, u *StatusUpdate) bool {
			next := ParseExtraStatus(u.Status)
			if r.Status == next && r.Reason == u.Reason {
				return false
			}
			prev := r.Status
			if terminalRank(prev) > terminalRank(next) && s.log != nil {
				// The feed is trusted even when it regresses a status;
				// logged because it may indicate an out-of-order snapshot.
				s.log.Printf("status regression for %s: %s -> %s", r.VideoId, prev, next)
			}
			r.Status = next
			r.Reason = u.Reason
			if next.IsFailure() && !prev.IsFailure() {
				msg := u.Reason
				if msg == "" {
					msg = fmt.Sprintf("Download of %q failed", r.ExtraTitle)
				}
				notices = append(notices, Notice{Message: msg, Success: false})
			}
			return true
		})
	// A matching snapshot entry may also clear an in-flight marker: the
	// authoritative state has caught up with the speculative one.
	for _, u := range updates {
		for key := range s.pending {
			if key.VideoId == u.ExternalId && s.pending[key].kind == mutationDownload {
				delete(s.pending, key)
			}
		}
	}
	s.mu.Unlock()
	for _, n := range notices {
		s.notify(n)
	}
	return changed
}

// terminalRank orders statuses roughly by lifecycle progress, used only to
// detect regressions worth logging.
func terminalRank(s ExtraStatus) int {
	switch s {
	case ExtraDownloaded, ExtraExists, ExtraMissing, ExtraFailed, ExtraRejected:
		return 2
	case ExtraQueued, ExtraDownloading, ExtraDeleting:
		return 1
	default:
		return 0
	}
}

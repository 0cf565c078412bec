package daemon

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// ErrJobPending is returned when a download is requested for an extra that
// already has an unfinished job.
var ErrJobPending = errors.New("a job for this extra is already pending")

// defaultStepDelay paces the simulated job progression.
const defaultStepDelay = 2 * time.Second

// Runner executes download jobs. Each job advances queued, running, then
// success or failed; every transition is persisted and pushed to the queue
// feed.
type Runner struct {
	mu       sync.Mutex
	jobs     []extrasync.QueueItem
	catalog  *Catalog
	store    *Store
	notifier *FeedNotifier
	log      *log.Logger

	// stepDelay is shortened in tests.
	stepDelay time.Duration

	wg sync.WaitGroup
}

// NewRunner creates a Runner. The store may be nil, which disables
// persistence.
func NewRunner(catalog *Catalog, store *Store, notifier *FeedNotifier, l *log.Logger) *Runner {
	return &Runner{
		catalog:   catalog,
		store:     store,
		notifier:  notifier,
		log:       l,
		stepDelay: defaultStepDelay,
	}
}

// Restore seeds the queue listing from persisted history. Jobs interrupted
// mid-flight are marked failed.
func (r *Runner) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	jobs, err := r.store.ListJobs(ctx)
	if err != nil {
		return err
	}
	for i := range jobs {
		switch jobs[i].Status {
		case extrasync.QueueQueued, extrasync.QueueRunning:
			jobs[i].Status = extrasync.QueueFailed
			jobs[i].EndedAt = time.Now()
			if err := r.store.UpsertJob(ctx, jobs[i]); err != nil {
				r.log.Printf("mark interrupted job %s failed: %v", jobs[i].JobId, err)
			}
		}
	}
	r.mu.Lock()
	r.jobs = jobs
	r.mu.Unlock()
	return nil
}

// Jobs returns the queue listing in order.
func (r *Runner) Jobs() []extrasync.QueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]extrasync.QueueItem(nil), r.jobs...)
}

// Enqueue creates a queued job for key and starts its progression. The
// queued state is persisted and pushed before Enqueue returns.
func (r *Runner) Enqueue(ctx context.Context, key extrasync.ExtraKey, displayName string) (string, error) {
	r.mu.Lock()
	for i := range r.jobs {
		if r.jobs[i].ExternalId == key.VideoId {
			switch r.jobs[i].Status {
			case extrasync.QueueQueued, extrasync.QueueRunning:
				r.mu.Unlock()
				return "", ErrJobPending
			}
		}
	}
	item := extrasync.QueueItem{
		JobId:       uuid.NewString(),
		ExternalId:  key.VideoId,
		DisplayName: displayName,
		Status:      extrasync.QueueQueued,
		QueuedAt:    time.Now(),
	}
	r.jobs = append(r.jobs, item)
	r.mu.Unlock()

	r.persist(ctx, item)
	r.catalog.SetStatus(key, extrasync.ExtraQueued, "")
	r.push(key.VideoId, extrasync.ExtraQueued, "")

	r.wg.Add(1)
	go r.advance(item.JobId, key)
	return item.JobId, nil
}

// Wait blocks until all in-flight jobs finish (for shutdown and tests).
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) advance(jobId string, key extrasync.ExtraKey) {
	defer r.wg.Done()
	ctx := context.Background()

	time.Sleep(r.stepDelay)
	started := time.Now()
	item := r.update(jobId, func(item *extrasync.QueueItem) {
		item.Status = extrasync.QueueRunning
		item.StartedAt = started
	})
	r.persist(ctx, item)
	r.catalog.SetStatus(key, extrasync.ExtraDownloading, "")
	r.push(key.VideoId, extrasync.ExtraDownloading, "")

	time.Sleep(r.stepDelay)
	ended := time.Now()
	status, reason := r.outcome(key)
	item = r.update(jobId, func(item *extrasync.QueueItem) {
		item.EndedAt = ended
		secs := ended.Sub(started).Seconds()
		item.Duration = []byte(strconv.FormatFloat(secs, 'f', -1, 64))
		if status == extrasync.ExtraDownloaded {
			item.Status = extrasync.QueueSuccess
		} else {
			item.Status = extrasync.QueueFailed
		}
	})
	r.persist(ctx, item)
	r.catalog.SetStatus(key, status, reason)
	r.push(key.VideoId, status, reason)
}

// outcome decides how a job ends. Records rejected in the catalog fail
// their jobs; everything else downloads cleanly.
func (r *Runner) outcome(key extrasync.ExtraKey) (extrasync.ExtraStatus, string) {
	if rec, ok := r.catalog.Get(key); ok && rec.BlacklistShaped() {
		return extrasync.ExtraRejected, "release is blacklisted"
	}
	return extrasync.ExtraDownloaded, ""
}

func (r *Runner) update(jobId string, mutate func(*extrasync.QueueItem)) extrasync.QueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].JobId == jobId {
			mutate(&r.jobs[i])
			return r.jobs[i]
		}
	}
	return extrasync.QueueItem{JobId: jobId}
}

func (r *Runner) persist(ctx context.Context, item extrasync.QueueItem) {
	if r.store == nil {
		return
	}
	if err := r.store.UpsertJob(ctx, item); err != nil {
		r.log.Printf("persist job %s: %v", item.JobId, err)
	}
}

func (r *Runner) push(externalId string, status extrasync.ExtraStatus, reason string) {
	if r.notifier == nil {
		return
	}
	r.notifier.Broadcast(common.FEED_QUEUE, common.UPDATE_QUEUE, &common.QueueUpdateEvent{
		Type: common.QueueUpdateType,
		Queue: []extrasync.StatusUpdate{{
			ExternalId: externalId,
			Status:     string(status),
			Reason:     reason,
		}},
	})
}

package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// ExtrasAPI is the slice of the daemon client the extras controller needs.
type ExtrasAPI interface {
	ExtrasList(ctx context.Context, p *common.ExtrasListParams) (*common.ExtrasListResult, error)
	StartDownload(ctx context.Context, key extrasync.ExtraKey) error
	DeleteExtra(ctx context.Context, key extrasync.ExtraKey) error
	RemoveBan(ctx context.Context, key extrasync.ExtraKey) error
	Search(ctx context.Context, p *common.SearchParams, onResult func(extrasync.ExtraRecord)) (int, error)
}

// ExtrasController routes user actions on media extras through the store's
// optimistic mutation entry points and resolves them against request
// completions. One controller owns the extras of one view.
type ExtrasController struct {
	store    *extrasync.Store
	api      ExtrasAPI
	notifier extrasync.Notifier
	log      *log.Logger

	mu        sync.Mutex
	searchSeq int
}

// NewExtrasController creates a controller with a fresh store. The notifier
// and logger may be nil.
func NewExtrasController(api ExtrasAPI, notifier extrasync.Notifier, l *log.Logger) *ExtrasController {
	return &ExtrasController{
		store:    extrasync.NewStore(notifier, l),
		api:      api,
		notifier: notifier,
		log:      l,
	}
}

// Store exposes the underlying keyed collection for rendering and
// reconciliation.
func (c *ExtrasController) Store() *extrasync.Store { return c.store }

func (c *ExtrasController) notify(n extrasync.Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

// Load fetches the extras listing for one media item and replaces the store.
func (c *ExtrasController) Load(ctx context.Context, p *common.ExtrasListParams) error {
	res, err := c.api.ExtrasList(ctx, p)
	if err != nil {
		return err
	}
	c.store.Load(res.Extras)
	return nil
}

// Download applies the speculative queued state synchronously, then sends
// the start request asynchronously. The returned channel reports the request
// outcome once; rollback and notices are handled by the store.
func (c *ExtrasController) Download(ctx context.Context, key extrasync.ExtraKey) <-chan error {
	done := make(chan error, 1)
	started, err := c.store.BeginDownload(key)
	if err != nil || !started {
		done <- err
		return done
	}
	go func() {
		reqErr := c.api.StartDownload(ctx, key)
		c.store.FinishDownload(key, reqErr)
		done <- reqErr
	}()
	return done
}

// Delete applies the transitional deleting state and sends the delete
// request asynchronously.
func (c *ExtrasController) Delete(ctx context.Context, key extrasync.ExtraKey) <-chan error {
	done := make(chan error, 1)
	if err := c.store.BeginDelete(key); err != nil {
		done <- err
		return done
	}
	go func() {
		reqErr := c.api.DeleteExtra(ctx, key)
		c.store.FinishDelete(key, reqErr)
		done <- reqErr
	}()
	return done
}

// Unban issues the blacklist-removal request; on success the entry is
// deleted or its status cleared depending on the list shape, on failure a
// transient notice is posted and state is untouched.
func (c *ExtrasController) Unban(ctx context.Context, key extrasync.ExtraKey) <-chan error {
	done := make(chan error, 1)
	go func() {
		reqErr := c.api.RemoveBan(ctx, key)
		if reqErr != nil {
			c.notify(extrasync.Notice{Message: fmt.Sprintf("Unban failed: %s", reqErr), Success: false})
			done <- reqErr
			return
		}
		if err := c.store.CompleteUnban(key); err != nil && c.log != nil {
			c.log.Printf("unban %s: %v", key, err)
		}
		done <- nil
	}()
	return done
}

// ApplyQueueUpdate reconciles one push snapshot into the store.
func (c *ExtrasController) ApplyQueueUpdate(ev *common.QueueUpdateEvent) {
	c.store.ApplySnapshot(ev.Queue)
}

// Search streams manual results for one media item and merges them with the
// backend-confirmed entries currently held: backend fields win for shared
// ids, manual presentation order comes first, backend-only entries follow.
// A newer search started while one is still streaming supersedes it.
func (c *ExtrasController) Search(ctx context.Context, p *common.SearchParams) error {
	c.mu.Lock()
	c.searchSeq++
	seq := c.searchSeq
	c.mu.Unlock()

	var manual []extrasync.ExtraRecord
	_, err := c.api.Search(ctx, p, func(r extrasync.ExtraRecord) {
		r.Status = extrasync.ParseExtraStatus(string(r.Status))
		manual = append(manual, r)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	stale := seq != c.searchSeq
	c.mu.Unlock()
	if stale {
		return nil
	}
	backend := c.store.Records()
	c.store.Load(extrasync.MergeSearchResults(manual, backend))
	return nil
}

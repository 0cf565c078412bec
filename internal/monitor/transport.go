package monitor

import (
	"context"
	"fmt"
	"log"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extracli"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// ChannelAPI is the push slice of the daemon client.
type ChannelAPI interface {
	Subscribe(ctx context.Context, feed string, d *extracli.Dispatcher, onDown func(error)) (*extracli.PushChannel, error)
}

// FeedTransport wires the transport selector to the monitors: push
// notifications and poll responses both land in the same mutation and
// reconciliation entry points, so there is no independent read-merge-write
// path for either delivery mode.
type FeedTransport struct {
	channels ChannelAPI
	tasks    *TaskMonitor
	queue    *QueueMonitor
	extras   *ExtrasController
	log      *log.Logger
}

// NewFeedTransport creates a FeedTransport. The logger may be nil.
func NewFeedTransport(channels ChannelAPI, tasks *TaskMonitor, queue *QueueMonitor, extras *ExtrasController, l *log.Logger) *FeedTransport {
	return &FeedTransport{channels: channels, tasks: tasks, queue: queue, extras: extras, log: l}
}

// OpenChannel subscribes the push channel for one feed and routes its
// notifications into the owning monitor.
func (t *FeedTransport) OpenChannel(ctx context.Context, feed string, onDown func(error)) (func(), error) {
	d := &extracli.Dispatcher{Handlers: make(map[common.UpdateType]extracli.Handler)}
	switch feed {
	case common.FEED_TASKS:
		d.Handlers[common.UPDATE_TASKS] = extracli.NewTaskUpdateHandler(func(res *common.TaskListResult) error {
			t.tasks.Apply(res.Tasks)
			return nil
		})
	case common.FEED_QUEUE:
		d.Handlers[common.UPDATE_QUEUE] = extracli.NewQueueUpdateHandler(func(ev *common.QueueUpdateEvent) error {
			t.queue.ApplyStatusUpdates(ev.Queue)
			t.extras.ApplyQueueUpdate(ev)
			return nil
		})
	default:
		return nil, fmt.Errorf("unknown feed %q", feed)
	}
	ch, err := t.channels.Subscribe(ctx, feed, d, onDown)
	if err != nil {
		return nil, err
	}
	return ch.Close, nil
}

// Poll performs one snapshot fetch for the feed and applies it.
func (t *FeedTransport) Poll(ctx context.Context, feed string) error {
	switch feed {
	case common.FEED_TASKS:
		return t.tasks.Refresh(ctx)
	case common.FEED_QUEUE:
		if err := t.queue.Refresh(ctx); err != nil {
			return err
		}
		// The listing carries the same authoritative statuses the push
		// channel would have delivered; reconcile them into the extras
		// store so polling mode reaches the same state.
		updates := deriveStatusUpdates(t.queue.Items())
		if len(updates) > 0 {
			t.extras.ApplyQueueUpdate(&common.QueueUpdateEvent{Type: common.QueueUpdateType, Queue: updates})
		}
		return nil
	default:
		return fmt.Errorf("unknown feed %q", feed)
	}
}

// queueToExtraStatus maps a job status onto the extra-job status vocabulary
// used by push updates.
var queueToExtraStatus = map[extrasync.QueueStatus]extrasync.ExtraStatus{
	extrasync.QueueQueued:  extrasync.ExtraQueued,
	extrasync.QueueRunning: extrasync.ExtraDownloading,
	extrasync.QueueSuccess: extrasync.ExtraDownloaded,
	extrasync.QueueFailed:  extrasync.ExtraFailed,
}

func deriveStatusUpdates(items []extrasync.QueueItem) []extrasync.StatusUpdate {
	var updates []extrasync.StatusUpdate
	for i := range items {
		if items[i].ExternalId == "" {
			continue
		}
		status, ok := queueToExtraStatus[items[i].Status]
		if !ok {
			continue
		}
		updates = append(updates, extrasync.StatusUpdate{
			ExternalId: items[i].ExternalId,
			Status:     string(status),
		})
	}
	return updates
}

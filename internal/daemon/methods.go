package daemon

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Custom JSON-RPC error codes.
const (
	codeExtraNotFound = jrpc2.Code(-32001)
	codeJobPending    = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

func (d *Daemon) methods() handler.Map {
	return handler.Map{
		common.METHOD_TASK_LIST:      handler.New(d.taskList),
		common.METHOD_TASK_FORCE:     handler.New(d.taskForce),
		common.METHOD_QUEUE_LIST:     handler.New(d.queueList),
		common.METHOD_EXTRAS_LIST:    handler.New(d.extrasList),
		common.METHOD_EXTRAS_START:   handler.New(d.extrasDownload),
		common.METHOD_EXTRAS_DELETE:  handler.New(d.extrasDelete),
		common.METHOD_EXTRAS_UNBAN:   handler.New(d.extrasUnban),
		common.METHOD_EXTRAS_SEARCH:  handler.New(d.extrasSearch),
		common.METHOD_FEED_SUBSCRIBE: handler.New(d.feedSubscribe),
	}
}

func (d *Daemon) taskList(_ context.Context) (*common.TaskListResult, error) {
	return &common.TaskListResult{Tasks: d.tasks.Snapshot()}, nil
}

// taskForce runs a task immediately, outside its schedule. The response
// waits for the run so a follow-up task.list already reflects it.
func (d *Daemon) taskForce(ctx context.Context, p *common.ForceExecuteParams) (*common.EmptyResult, error) {
	if p.TaskId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: task_id"}
	}
	if err := d.tasks.Run(ctx, p.TaskId); err != nil {
		if err == extrasync.ErrNotFound {
			return nil, &jrpc2.Error{Code: codeExtraNotFound, Message: "task not found"}
		}
		return nil, &jrpc2.Error{Code: jrpc2.InternalError, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

func (d *Daemon) queueList(_ context.Context) (*common.QueueListResult, error) {
	return &common.QueueListResult{Items: d.runner.Jobs()}, nil
}

func (d *Daemon) extrasList(_ context.Context, p *common.ExtrasListParams) (*common.ExtrasListResult, error) {
	if p.MediaType == "" || p.MediaId == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing media reference"}
	}
	return &common.ExtrasListResult{
		Extras: d.catalog.List(p.MediaType, p.MediaId, p.Blacklist),
	}, nil
}

func (d *Daemon) extrasDownload(ctx context.Context, p *common.ExtraActionParams) (*common.EmptyResult, error) {
	if p.VideoId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: video_id"}
	}
	key := p.Key()
	rec, ok := d.catalog.Get(key)
	if !ok {
		// Manual entries arrive with an identity the daemon has never seen.
		rec = extrasync.ExtraRecord{
			MediaType:  key.MediaType,
			MediaId:    key.MediaId,
			ExtraType:  key.ExtraType,
			ExtraTitle: key.ExtraTitle,
			VideoId:    key.VideoId,
			Status:     extrasync.ExtraNone,
		}
		d.catalog.Put(rec)
	}
	if rec.Status.BlocksDownload() {
		return nil, &jrpc2.Error{Code: codeJobPending, Message: "extra is already downloaded or downloading"}
	}
	if _, err := d.runner.Enqueue(ctx, key, displayName(rec)); err != nil {
		if err == ErrJobPending {
			return nil, &jrpc2.Error{Code: codeJobPending, Message: err.Error()}
		}
		return nil, &jrpc2.Error{Code: jrpc2.InternalError, Message: err.Error()}
	}
	return &common.EmptyResult{}, nil
}

func (d *Daemon) extrasDelete(_ context.Context, p *common.ExtraActionParams) (*common.EmptyResult, error) {
	if !d.catalog.Delete(p.Key()) {
		return nil, &jrpc2.Error{Code: codeExtraNotFound, Message: "extra not found"}
	}
	return &common.EmptyResult{}, nil
}

func (d *Daemon) extrasUnban(_ context.Context, p *common.ExtraActionParams) (*common.EmptyResult, error) {
	if !d.catalog.Unban(p.Key()) {
		return nil, &jrpc2.Error{Code: codeExtraNotFound, Message: "extra not found"}
	}
	return &common.EmptyResult{}, nil
}

// extrasSearch streams matching records back to the caller as search.result
// notifications, then returns the terminating summary. Streaming needs a
// push-capable connection; over plain HTTP the summary alone is returned.
func (d *Daemon) extrasSearch(ctx context.Context, p *common.SearchParams) (*common.SearchDoneEvent, error) {
	if p.MediaType == "" || p.MediaId == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing media reference"}
	}
	results := d.catalog.Search(p.MediaType, p.MediaId, p.Query)
	if srv := jrpc2.ServerFromContext(ctx); srv != nil {
		for _, r := range results {
			if err := srv.Notify(ctx, string(common.UPDATE_SEARCH_RESULT), &common.SearchResultEvent{Record: r}); err != nil {
				d.log.Printf("search result push failed: %v", err)
				break
			}
		}
	}
	return &common.SearchDoneEvent{Count: len(results)}, nil
}

// feedSubscribe selects the push feed for the calling WebSocket connection.
func (d *Daemon) feedSubscribe(ctx context.Context, p *common.FeedSubscribeParams) (*common.EmptyResult, error) {
	switch p.Feed {
	case common.FEED_TASKS, common.FEED_QUEUE:
	default:
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "unknown feed: " + p.Feed}
	}
	if srv := jrpc2.ServerFromContext(ctx); srv != nil {
		d.notifier.Subscribe(srv, p.Feed)
	}
	return &common.EmptyResult{}, nil
}

func displayName(rec extrasync.ExtraRecord) string {
	if rec.ExtraTitle != "" {
		return rec.ExtraTitle
	}
	return rec.VideoId
}

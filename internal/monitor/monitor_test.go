package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// fakeAPI implements TaskAPI, QueueAPI and ExtrasAPI against fixtures.
type fakeAPI struct {
	mu sync.Mutex

	tasks      []extrasync.ScheduledTask
	taskErr    error
	forceErr   error
	forceCalls []string

	queue    []extrasync.QueueItem
	queueErr error

	extras    []extrasync.ExtraRecord
	startErr  error
	deleteErr error
	unbanErr  error

	searchResults []extrasync.ExtraRecord
	searchErr     error
}

func (f *fakeAPI) TaskList(context.Context) (*common.TaskListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return &common.TaskListResult{Tasks: append([]extrasync.ScheduledTask(nil), f.tasks...)}, nil
}

func (f *fakeAPI) ForceExecute(_ context.Context, taskId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceCalls = append(f.forceCalls, taskId)
	return f.forceErr
}

func (f *fakeAPI) QueueList(context.Context) (*common.QueueListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	return &common.QueueListResult{Items: append([]extrasync.QueueItem(nil), f.queue...)}, nil
}

func (f *fakeAPI) ExtrasList(context.Context, *common.ExtrasListParams) (*common.ExtrasListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &common.ExtrasListResult{Extras: append([]extrasync.ExtraRecord(nil), f.extras...)}, nil
}

func (f *fakeAPI) StartDownload(context.Context, extrasync.ExtraKey) error { return f.startErr }
func (f *fakeAPI) DeleteExtra(context.Context, extrasync.ExtraKey) error  { return f.deleteErr }
func (f *fakeAPI) RemoveBan(context.Context, extrasync.ExtraKey) error    { return f.unbanErr }

func (f *fakeAPI) Search(_ context.Context, _ *common.SearchParams, onResult func(extrasync.ExtraRecord)) (int, error) {
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	for _, r := range f.searchResults {
		onResult(r)
	}
	return len(f.searchResults), nil
}

func extraRec(videoId string, status extrasync.ExtraStatus) extrasync.ExtraRecord {
	return extrasync.ExtraRecord{
		MediaType: "movie",
		MediaId:   7,
		ExtraType: "trailer",
		VideoId:   videoId,
		Status:    status,
	}
}

// TestTaskMonitor_ForceExecuteDisabledTask verifies force-executing a
// disabled task still runs and refreshes, while the interval column keeps
// displaying Disabled.
func TestTaskMonitor_ForceExecuteDisabledTask(t *testing.T) {
	api := &fakeAPI{tasks: []extrasync.ScheduledTask{{
		Id: "t1", Name: "cleanup", IntervalSeconds: 0, Status: extrasync.TaskIdle,
	}}}
	m := NewTaskMonitor(api, nil)

	if err := <-m.ForceExecute(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}

	api.mu.Lock()
	calls := append([]string(nil), api.forceCalls...)
	api.mu.Unlock()
	if len(calls) != 1 || calls[0] != "t1" {
		t.Fatalf("expected one force call for t1, got %v", calls)
	}

	tasks := m.Tasks()
	if len(tasks) != 1 {
		t.Fatal("refresh after force-execute did not land")
	}
	if got := tasks[0].IntervalDisplay(); got != "Disabled" {
		t.Fatalf("disabled task interval must stay Disabled, got %q", got)
	}
}

// TestTaskMonitor_ForceExecuteFailureStillRefreshes verifies the refresh is
// non-suppressing: it runs on failure too.
func TestTaskMonitor_ForceExecuteFailureStillRefreshes(t *testing.T) {
	api := &fakeAPI{
		tasks:    []extrasync.ScheduledTask{{Id: "t1", Status: extrasync.TaskFailed}},
		forceErr: errors.New("task exploded"),
	}
	m := NewTaskMonitor(api, nil)
	if err := <-m.ForceExecute(context.Background(), "t1"); err == nil {
		t.Fatal("expected the request error to propagate")
	}
	if len(m.Tasks()) != 1 {
		t.Fatal("refresh must run even when the request failed")
	}
}

func TestTaskMonitor_ApplyNormalizesUnknownStatus(t *testing.T) {
	m := NewTaskMonitor(nil, nil)
	m.Apply([]extrasync.ScheduledTask{{Id: "t1", Status: "sideways"}})
	if got := m.Tasks()[0].Status; got != extrasync.TaskUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestQueueMonitor_ApplyCollapsesDuplicateKeys(t *testing.T) {
	m := NewQueueMonitor(nil, nil)
	at := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	m.Apply([]extrasync.QueueItem{
		{JobId: "j1", QueuedAt: at, Status: extrasync.QueueQueued},
		{JobId: "j2", Status: extrasync.QueueRunning},
		{JobId: "j1", QueuedAt: at, Status: extrasync.QueueRunning},
	})
	items := m.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].JobId != "j1" || items[0].Status != extrasync.QueueRunning {
		t.Fatalf("later duplicate must win in place, got %+v", items[0])
	}
}

func TestQueueMonitor_ApplyStatusUpdates(t *testing.T) {
	m := NewQueueMonitor(nil, nil)
	m.Apply([]extrasync.QueueItem{
		{JobId: "j1", ExternalId: "vidA", Status: extrasync.QueueQueued},
		{JobId: "j2", ExternalId: "vidB", Status: extrasync.QueueRunning},
	})
	changed := m.ApplyStatusUpdates([]extrasync.StatusUpdate{
		{ExternalId: "vidA", Status: "running"},
	})
	if changed != 1 {
		t.Fatalf("expected 1 change, got %d", changed)
	}
	items := m.Items()
	if items[0].Status != extrasync.QueueRunning {
		t.Fatalf("expected running, got %s", items[0].Status)
	}
	if items[1].Status != extrasync.QueueRunning {
		t.Fatal("absent job must keep its state")
	}
}

// TestExtrasController_DownloadRollsBackOnRequestFailure exercises the full
// optimistic flow through the controller.
func TestExtrasController_DownloadRollsBackOnRequestFailure(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("refused")}
	notices := &noticeCapture{}
	c := NewExtrasController(api, notices, nil)
	prior := extraRec("v1", extrasync.ExtraNone)
	c.Store().Load([]extrasync.ExtraRecord{prior})

	key := prior.Key()
	if got, _ := c.Store().Get(key); got.Status != extrasync.ExtraNone {
		t.Fatal("precondition")
	}
	err := <-c.Download(context.Background(), key)
	if err == nil {
		t.Fatal("expected request error")
	}
	if got, _ := c.Store().Get(key); got != prior {
		t.Fatalf("expected exact pre-click value, got %+v", got)
	}
	if notices.count() != 1 {
		t.Fatalf("expected one notice, got %d", notices.count())
	}
}

func TestExtrasController_DownloadSetsQueuedSynchronously(t *testing.T) {
	api := &fakeAPI{}
	c := NewExtrasController(api, nil, nil)
	c.Store().Load([]extrasync.ExtraRecord{extraRec("v1", extrasync.ExtraNone)})

	keyRec := extraRec("v1", extrasync.ExtraNone)
	key := keyRec.Key()
	done := c.Download(context.Background(), key)
	// The speculative state is visible before the request resolves.
	if got, _ := c.Store().Get(key); got.Status != extrasync.ExtraQueued {
		t.Fatalf("expected queued synchronously, got %s", got.Status)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestExtrasController_SearchMergeOrdering(t *testing.T) {
	api := &fakeAPI{searchResults: []extrasync.ExtraRecord{
		extraRec("A", extrasync.ExtraNone),
		extraRec("B", extrasync.ExtraNone),
	}}
	c := NewExtrasController(api, nil, nil)
	confirmed := extraRec("B", extrasync.ExtraDownloaded)
	c.Store().Load([]extrasync.ExtraRecord{confirmed, extraRec("C", extrasync.ExtraQueued)})

	if err := c.Search(context.Background(), &common.SearchParams{Query: "trailer"}); err != nil {
		t.Fatal(err)
	}
	records := c.Store().Records()
	wantOrder := []string{"A", "B", "C"}
	if len(records) != len(wantOrder) {
		t.Fatalf("expected %d records, got %d", len(wantOrder), len(records))
	}
	for i, id := range wantOrder {
		if records[i].VideoId != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, records[i].VideoId)
		}
	}
	if records[1].Status != extrasync.ExtraDownloaded {
		t.Fatal("backend fields must win for shared ids")
	}
}

// TestFeedTransport_QueuePollReconcilesExtras verifies polling mode reaches
// the same extras state the push channel would have delivered.
func TestFeedTransport_QueuePollReconcilesExtras(t *testing.T) {
	api := &fakeAPI{queue: []extrasync.QueueItem{
		{JobId: "j1", ExternalId: "v1", DisplayName: "Trailer", Status: extrasync.QueueSuccess},
	}}
	queue := NewQueueMonitor(api, nil)
	extras := NewExtrasController(api, nil, nil)
	extras.Store().Load([]extrasync.ExtraRecord{extraRec("v1", extrasync.ExtraDownloading)})

	tr := NewFeedTransport(nil, nil, queue, extras, nil)
	if err := tr.Poll(context.Background(), common.FEED_QUEUE); err != nil {
		t.Fatal(err)
	}
	lookupRec := extraRec("v1", extrasync.ExtraNone)
	if got, _ := extras.Store().Get(lookupRec.Key()); got.Status != extrasync.ExtraDownloaded {
		t.Fatalf("expected downloaded after poll reconcile, got %s", got.Status)
	}
	if len(queue.Items()) != 1 {
		t.Fatal("queue listing must be applied")
	}
}

type noticeCapture struct {
	mu      sync.Mutex
	notices []extrasync.Notice
}

func (n *noticeCapture) Notify(notice extrasync.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *noticeCapture) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

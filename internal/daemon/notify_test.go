package daemon

import (
	"io"
	"log"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/extrarr/extrarr/common"
)

// newPipeServer creates a push-capable jrpc2 server backed by io.Pipe
// channels. The client channel must be drained or closed so pushes do not
// block.
func newPipeServer(t *testing.T) (channel.Channel, *jrpc2.Server, func()) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cli := channel.Line(cr, cw)
	srvCh := channel.Line(sr, sw)

	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(srvCh)

	cleanup := func() {
		cli.Close()
		_ = srv.Wait()
	}
	return cli, srv, cleanup
}

func TestFeedNotifier_SubscribeSelectsFeed(t *testing.T) {
	n := NewFeedNotifier(nil)
	cli, srv, cleanup := newPipeServer(t)
	defer cleanup()
	_ = cli

	n.Register(srv)
	if n.Count(common.FEED_QUEUE) != 0 {
		t.Fatal("registered connection must not receive a feed before subscribing")
	}

	n.Subscribe(srv, common.FEED_QUEUE)
	if n.Count(common.FEED_QUEUE) != 1 {
		t.Fatalf("expected 1 queue subscriber, got %d", n.Count(common.FEED_QUEUE))
	}

	// Re-subscribing moves the connection, it does not duplicate it.
	n.Subscribe(srv, common.FEED_TASKS)
	if n.Count(common.FEED_QUEUE) != 0 || n.Count(common.FEED_TASKS) != 1 {
		t.Fatalf("expected the subscription to move feeds, got queue=%d tasks=%d",
			n.Count(common.FEED_QUEUE), n.Count(common.FEED_TASKS))
	}
}

func TestFeedNotifier_SubscribeUnknownConnection(t *testing.T) {
	n := NewFeedNotifier(nil)
	_, srv, cleanup := newPipeServer(t)
	defer cleanup()

	// Never registered: Subscribe is a no-op.
	n.Subscribe(srv, common.FEED_QUEUE)
	if n.Count(common.FEED_QUEUE) != 0 {
		t.Fatal("unregistered connection must not be subscribed")
	}
}

func TestFeedNotifier_BroadcastOnlyHitsSubscribedFeed(t *testing.T) {
	n := NewFeedNotifier(nil)

	cliQueue, srvQueue, cleanupQueue := newPipeServer(t)
	defer cleanupQueue()
	cliTasks, srvTasks, cleanupTasks := newPipeServer(t)
	defer cleanupTasks()

	n.Register(srvQueue)
	n.Register(srvTasks)
	n.Subscribe(srvQueue, common.FEED_QUEUE)
	n.Subscribe(srvTasks, common.FEED_TASKS)

	received := make(chan []byte, 1)
	go func() {
		data, _ := cliQueue.Recv()
		received <- data
	}()
	// Nothing should arrive on the tasks channel; fail loudly if it does.
	go func() {
		if data, err := cliTasks.Recv(); err == nil {
			t.Errorf("tasks subscriber received a queue push: %s", data)
		}
	}()

	n.Broadcast(common.FEED_QUEUE, common.UPDATE_QUEUE, &common.QueueUpdateEvent{Type: common.QueueUpdateType})

	data := <-received
	if len(data) == 0 {
		t.Fatal("queue subscriber got an empty push")
	}
}

func TestFeedNotifier_BroadcastDropsDeadConnections(t *testing.T) {
	n := NewFeedNotifier(log.New(io.Discard, "", 0))
	cli, srv, _ := newPipeServer(t)

	n.Register(srv)
	n.Subscribe(srv, common.FEED_TASKS)

	cli.Close()
	_ = srv.Wait()

	n.Broadcast(common.FEED_TASKS, common.UPDATE_TASKS, &common.TaskListResult{})
	if n.Count(common.FEED_TASKS) != 0 {
		t.Fatalf("dead connection must be dropped, got %d", n.Count(common.FEED_TASKS))
	}
}

func TestFeedNotifier_BroadcastNoSubscribers(t *testing.T) {
	n := NewFeedNotifier(nil)
	// Broadcasting into the void must not panic.
	n.Broadcast(common.FEED_QUEUE, common.UPDATE_QUEUE, &common.QueueUpdateEvent{})
}

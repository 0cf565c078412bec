package daemon

import (
	"context"
	"log"
	"sync"

	"github.com/creachadair/jrpc2"

	"github.com/extrarr/extrarr/common"
)

// FeedNotifier maintains the set of connected jrpc2 WebSocket servers and
// broadcasts push notifications to the ones subscribed to a feed. A
// connection receives nothing until it subscribes.
type FeedNotifier struct {
	mu    sync.RWMutex
	feeds map[*jrpc2.Server]string
	log   *log.Logger
}

// NewFeedNotifier creates a new notifier.
func NewFeedNotifier(l *log.Logger) *FeedNotifier {
	return &FeedNotifier{
		feeds: make(map[*jrpc2.Server]string),
		log:   l,
	}
}

// Register adds a connection to the set with no feed selected yet.
func (n *FeedNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feeds[srv] = ""
}

// Subscribe selects the feed a connection receives. A second call replaces
// the previous selection.
func (n *FeedNotifier) Subscribe(srv *jrpc2.Server, feed string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.feeds[srv]; !ok {
		return
	}
	n.feeds[srv] = feed
}

// Unregister removes a connection from the set.
func (n *FeedNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.feeds, srv)
}

// Broadcast sends a push notification to every connection subscribed to
// feed. Connections that fail to receive are unregistered.
func (n *FeedNotifier) Broadcast(feed string, method common.UpdateType, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.feeds))
	for srv, f := range n.feeds {
		if f == feed {
			servers = append(servers, srv)
		}
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), string(method), params); err != nil {
			if n.log != nil {
				n.log.Printf("push to %s feed failed: %v", feed, err)
			}
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.feeds, srv)
		}
		n.mu.Unlock()
	}
}

// Count returns the number of connections subscribed to feed (for testing).
func (n *FeedNotifier) Count(feed string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var c int
	for _, f := range n.feeds {
		if f == feed {
			c++
		}
	}
	return c
}

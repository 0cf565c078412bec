// Package daemon implements the extrarr background service: the job runner,
// the maintenance task scheduler and the JSON-RPC surface the clients talk
// to. Requests and polls arrive over HTTP at /rpc; push feeds are served
// over WebSocket at /rpc/ws.
package daemon

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/extrarr/extrarr/internal/config"
)

// Daemon owns the daemon state and its HTTP server.
type Daemon struct {
	cfg      *config.Config
	log      *log.Logger
	store    *Store
	catalog  *Catalog
	notifier *FeedNotifier
	runner   *Runner
	tasks    *TaskSet

	bridge jhttp.Bridge

	mu     sync.Mutex
	server *http.Server
	cancel context.CancelFunc
}

// New assembles a Daemon from its configuration. The store is opened at
// cfg's database path; pass an empty path to run without persistence.
func New(cfg *config.Config, storePath string, l *log.Logger) (*Daemon, error) {
	var store *Store
	if storePath != "" {
		var err error
		store, err = OpenStore(storePath)
		if err != nil {
			return nil, err
		}
	}

	d := &Daemon{
		cfg:      cfg,
		log:      l,
		store:    store,
		catalog:  NewCatalog(),
		notifier: NewFeedNotifier(l),
	}
	d.runner = NewRunner(d.catalog, store, d.notifier, l)
	d.tasks = NewTaskSet(store, d.notifier, l)
	d.registerTasks()
	d.bridge = jhttp.NewBridge(d.methods(), nil)
	return d, nil
}

// registerTasks installs the built-in maintenance tasks.
func (d *Daemon) registerTasks() {
	d.tasks.Register(refreshTask(), func(ctx context.Context) error {
		// Re-derive catalog statuses from the job history. Cheap today,
		// kept as a task so clients see it run on schedule.
		return d.runner.Restore(ctx)
	})
	d.tasks.Register(pruneTask(), func(ctx context.Context) error {
		if d.store == nil {
			return nil
		}
		removed, err := d.store.PruneJobs(ctx, time.Now().Add(-7*24*time.Hour))
		if err != nil {
			return err
		}
		if removed > 0 {
			d.log.Printf("pruned %d finished jobs", removed)
		}
		return nil
	})
}

// Catalog exposes the daemon's extras catalog for seeding.
func (d *Daemon) Catalog() *Catalog { return d.catalog }

// Handler returns the daemon's HTTP routing.
func (d *Daemon) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rpc/ws", http.HandlerFunc(d.handleWebSocket))
	mux.Handle("/rpc", d.bridge)
	return mux
}

// handleWebSocket upgrades the connection and serves JSON-RPC over it with
// push enabled. The connection stays registered with the notifier until the
// peer goes away.
func (d *Daemon) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		d.log.Printf("websocket accept: %v", err)
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(d.methods(), &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(ch)
	d.notifier.Register(srv)
	defer d.notifier.Unregister(srv)
	if err := srv.Wait(); err != nil {
		d.log.Printf("websocket session ended: %v", err)
	}
	_ = conn.Close(cws.StatusNormalClosure, "")
}

// Start restores persisted state, seeds the scheduler and serves HTTP until
// the context is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.runner.Restore(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	sched := NewScheduler(ctx, func(taskId string) {
		go func() {
			if err := d.tasks.Run(ctx, taskId); err != nil {
				d.log.Printf("scheduled run of %s: %v", taskId, err)
			}
		}()
	})
	for _, event := range d.tasks.Events() {
		sched.Add(event)
	}

	server := &http.Server{
		Addr:    d.cfg.ListenAddr,
		Handler: d.Handler(),
	}
	d.mu.Lock()
	d.server = server
	d.cancel = cancel
	d.mu.Unlock()

	d.log.Printf("daemon listening on %s", d.cfg.ListenAddr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server, the scheduler and waits for in-flight
// jobs.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	server := d.server
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if server != nil {
		err = server.Shutdown(ctx)
	}
	d.runner.Wait()
	d.bridge.Close()
	if closeErr := d.store.Close(); err == nil {
		err = closeErr
	}
	return err
}

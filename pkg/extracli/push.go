package extracli

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/extrarr/extrarr/common"
)

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface and
// reports the first transport failure through onDown, unless the channel was
// closed deliberately.
type wsChannel struct {
	conn   *cws.Conn
	ctx    context.Context
	closed atomic.Bool
	down   sync.Once
	onDown func(error)
}

func newWsChannel(ctx context.Context, conn *cws.Conn, onDown func(error)) *wsChannel {
	return &wsChannel{conn: conn, ctx: ctx, onDown: onDown}
}

func (c *wsChannel) report(err error) {
	if c.closed.Load() || c.onDown == nil {
		return
	}
	c.down.Do(func() { c.onDown(err) })
}

// Send writes a JSON-RPC message to the WebSocket connection.
func (c *wsChannel) Send(data []byte) error {
	err := c.conn.Write(c.ctx, cws.MessageText, data)
	if err != nil {
		c.report(err)
	}
	return err
}

// Recv reads a JSON-RPC message from the WebSocket connection.
func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	if err != nil {
		c.report(err)
	}
	return data, err
}

// Close shuts down the WebSocket connection with a normal closure status.
func (c *wsChannel) Close() error {
	c.closed.Store(true)
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// PushChannel is one live feed subscription over a dedicated WebSocket.
type PushChannel struct {
	ch   *wsChannel
	rpc  *jrpc2.Client
	once sync.Once
}

// Close tears the subscription down. It is safe to call repeatedly and from
// a stale holder; only the first call acts.
func (p *PushChannel) Close() {
	p.once.Do(func() {
		p.ch.closed.Store(true)
		p.rpc.Close()
	})
}

// Subscribe opens the push channel for one feed. Notifications are routed
// through the dispatcher; onDown fires once if the transport fails or the
// daemon closes the connection. A subscription error means the caller should
// fall back to polling.
func (c *Client) Subscribe(ctx context.Context, feed string, d *Dispatcher, onDown func(error)) (*PushChannel, error) {
	conn, _, err := cws.Dial(ctx, c.wsURL(), nil)
	if err != nil {
		return nil, err
	}
	ch := newWsChannel(context.Background(), conn, onDown)
	rpc := jrpc2.NewClient(ch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			var raw json.RawMessage
			if err := req.UnmarshalParams(&raw); err != nil {
				if c.log != nil {
					c.log.Printf("push params for %s: %v", req.Method(), err)
				}
				return
			}
			if err := d.Dispatch(req.Method(), raw); err != nil && c.log != nil {
				c.log.Printf("push dispatch %s: %v", req.Method(), err)
			}
		},
	})
	p := &PushChannel{ch: ch, rpc: rpc}
	if _, err := rpc.Call(ctx, common.METHOD_FEED_SUBSCRIBE, &common.FeedSubscribeParams{Feed: feed}); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

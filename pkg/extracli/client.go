// Package extracli is the client for the extrarr daemon. Request/poll
// operations go over JSON-RPC bridged on HTTP; push feeds arrive over a
// WebSocket carrying JSON-RPC server notifications.
package extracli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Client talks to one extrarr daemon.
type Client struct {
	base string
	rpc  *jrpc2.Client
	log  *log.Logger
}

// NewClient creates a Client for the daemon at addr (host:port or a full
// http URL). The logger may be nil.
func NewClient(addr string, l *log.Logger) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	base = strings.TrimRight(base, "/")
	ch := jhttp.NewChannel(base+"/rpc", nil)
	return &Client{
		base: base,
		rpc:  jrpc2.NewClient(ch, nil),
		log:  l,
	}
}

// Close releases the underlying RPC channel.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) wsURL() string {
	ws := strings.Replace(c.base, "http", "ws", 1)
	return ws + "/rpc/ws"
}

func invoke[T any](c *Client, ctx context.Context, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &out, nil
}

// TaskList fetches the full scheduled-task snapshot.
func (c *Client) TaskList(ctx context.Context) (*common.TaskListResult, error) {
	return invoke[common.TaskListResult](c, ctx, common.METHOD_TASK_LIST, nil)
}

// ForceExecute fires a one-shot execution request for a task by id.
func (c *Client) ForceExecute(ctx context.Context, taskId string) error {
	_, err := invoke[common.EmptyResult](c, ctx, common.METHOD_TASK_FORCE, &common.ForceExecuteParams{TaskId: taskId})
	return err
}

// QueueList fetches the current queue listing.
func (c *Client) QueueList(ctx context.Context) (*common.QueueListResult, error) {
	return invoke[common.QueueListResult](c, ctx, common.METHOD_QUEUE_LIST, nil)
}

// ExtrasList fetches the extras listing for one media item.
func (c *Client) ExtrasList(ctx context.Context, p *common.ExtrasListParams) (*common.ExtrasListResult, error) {
	return invoke[common.ExtrasListResult](c, ctx, common.METHOD_EXTRAS_LIST, p)
}

// StartDownload requests a download for the addressed extra job.
func (c *Client) StartDownload(ctx context.Context, key extrasync.ExtraKey) error {
	_, err := invoke[common.EmptyResult](c, ctx, common.METHOD_EXTRAS_START, actionParams(key))
	return err
}

// DeleteExtra requests deletion of a downloaded extra.
func (c *Client) DeleteExtra(ctx context.Context, key extrasync.ExtraKey) error {
	_, err := invoke[common.EmptyResult](c, ctx, common.METHOD_EXTRAS_DELETE, actionParams(key))
	return err
}

// RemoveBan requests blacklist removal for the addressed extra job.
func (c *Client) RemoveBan(ctx context.Context, key extrasync.ExtraKey) error {
	_, err := invoke[common.EmptyResult](c, ctx, common.METHOD_EXTRAS_UNBAN, actionParams(key))
	return err
}

func actionParams(key extrasync.ExtraKey) *common.ExtraActionParams {
	return &common.ExtraActionParams{
		MediaRef:   common.MediaRef{MediaType: key.MediaType, MediaId: key.MediaId},
		ExtraType:  key.ExtraType,
		ExtraTitle: key.ExtraTitle,
		VideoId:    key.VideoId,
	}
}

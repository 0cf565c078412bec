package extracli

import (
	"context"
	"encoding/json"
	"errors"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Search runs an incremental extras search. Each result record is delivered
// through onResult as it arrives; the call returns once the daemon reports
// the stream done or on the first error. Results stream over a dedicated
// WebSocket so a slow search does not block the poll channel.
func (c *Client) Search(ctx context.Context, p *common.SearchParams, onResult func(extrasync.ExtraRecord)) (int, error) {
	conn, _, err := cws.Dial(ctx, c.wsURL(), nil)
	if err != nil {
		return 0, err
	}
	ch := newWsChannel(context.Background(), conn, nil)
	rpc := jrpc2.NewClient(ch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			if common.UpdateType(req.Method()) != common.UPDATE_SEARCH_RESULT {
				return
			}
			var raw json.RawMessage
			if err := req.UnmarshalParams(&raw); err != nil {
				return
			}
			var ev common.SearchResultEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				if c.log != nil {
					c.log.Printf("search result decode: %v", err)
				}
				return
			}
			onResult(ev.Record)
		},
	})
	defer rpc.Close()

	var done common.SearchDoneEvent
	if err := rpc.CallResult(ctx, common.METHOD_EXTRAS_SEARCH, p, &done); err != nil {
		return 0, err
	}
	if done.Error != "" {
		return done.Count, errors.New(done.Error)
	}
	return done.Count, nil
}

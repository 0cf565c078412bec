package extracli

import (
	"encoding/json"

	"github.com/extrarr/extrarr/common"
)

// Handler processes one push update from the daemon. Implementations receive
// the raw JSON params and are responsible for unmarshaling them.
type Handler interface {
	Handle(json.RawMessage) error
}

// Dispatcher routes push notifications to the handler registered for their
// update type. Unregistered types are ignored.
type Dispatcher struct {
	Handlers map[common.UpdateType]Handler
}

// Dispatch routes one notification by method name.
func (d *Dispatcher) Dispatch(method string, params json.RawMessage) error {
	h, ok := d.Handlers[common.UpdateType(method)]
	if !ok {
		return nil
	}
	return h.Handle(params)
}

// NewQueueUpdateHandler creates a handler for queue.update snapshots.
func NewQueueUpdateHandler(callback func(*common.QueueUpdateEvent) error) *QueueUpdateHandler {
	return &QueueUpdateHandler{Callback: callback}
}

// QueueUpdateHandler processes download-queue snapshot pushes.
type QueueUpdateHandler struct {
	Callback func(*common.QueueUpdateEvent) error
}

func (h *QueueUpdateHandler) Handle(m json.RawMessage) error {
	var v common.QueueUpdateEvent
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	return h.Callback(&v)
}

// NewTaskUpdateHandler creates a handler for task.update snapshots.
func NewTaskUpdateHandler(callback func(*common.TaskListResult) error) *TaskUpdateHandler {
	return &TaskUpdateHandler{Callback: callback}
}

// TaskUpdateHandler processes full scheduled-task snapshot pushes.
type TaskUpdateHandler struct {
	Callback func(*common.TaskListResult) error
}

func (h *TaskUpdateHandler) Handle(m json.RawMessage) error {
	var v common.TaskListResult
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	return h.Callback(&v)
}

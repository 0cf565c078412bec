// Package common provides the wire types and constants shared between the
// extrarr client layer and the daemon.
package common

// UpdateType names a push notification method on the feed channel.
type UpdateType string

const (
	UPDATE_QUEUE         UpdateType = "queue.update"
	UPDATE_TASKS         UpdateType = "task.update"
	UPDATE_SEARCH_RESULT UpdateType = "search.result"
	UPDATE_SEARCH_DONE   UpdateType = "search.done"
)

// QueueUpdateType is the legacy envelope tag carried inside queue snapshots.
const QueueUpdateType = "download_queue_update"

// RPC method names served by the daemon.
const (
	METHOD_TASK_LIST      = "task.list"
	METHOD_TASK_FORCE     = "task.force"
	METHOD_QUEUE_LIST     = "queue.list"
	METHOD_EXTRAS_LIST    = "extras.list"
	METHOD_EXTRAS_START   = "extras.download"
	METHOD_EXTRAS_DELETE  = "extras.delete"
	METHOD_EXTRAS_UNBAN   = "extras.unban"
	METHOD_EXTRAS_SEARCH  = "extras.search"
	METHOD_FEED_SUBSCRIBE = "feed.subscribe"
)

// Feed names, one push channel or poll loop per feed.
const (
	FEED_TASKS = "tasks"
	FEED_QUEUE = "queue"
)

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the default configuration directory.
	ConfigDirEnv = "EXTRARR_CONFIG_DIR"

	// DaemonAddrEnv overrides the daemon address clients connect to.
	DaemonAddrEnv = "EXTRARR_DAEMON_ADDR"

	// DebugEnv enables debug logging.
	DebugEnv = "EXTRARR_DEBUG"
)

// Package tui implements the live watch view: a tabbed terminal UI over the
// tasks, queue and extras monitors. Tab selection drives feed activation and
// terminal focus drives visibility, so background delivery stops the moment
// nobody is looking.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/internal/feed"
	"github.com/extrarr/extrarr/internal/monitor"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

// Tab identifies one watch view tab.
type Tab int

const (
	TabTasks Tab = iota
	TabQueue
	TabExtras
)

// redrawInterval paces view refreshes; data arrives through the feeds
// independently of it.
const redrawInterval = 500 * time.Millisecond

// FeedControl is the slice of the transport selector the model drives.
type FeedControl interface {
	Activate(feed string) uint64
	Deactivate(feed string, gen uint64) bool
}

// Deps wires the model to the monitors and feeds it renders.
type Deps struct {
	Tasks  *monitor.TaskMonitor
	Queue  *monitor.QueueMonitor
	Extras *monitor.ExtrasController
	Board  *extrasync.Board

	TasksFeed FeedControl
	QueueFeed FeedControl
	TasksLC   *feed.Lifecycle
	QueueLC   *feed.Lifecycle

	// Media is the media item whose extras the view shows.
	Media common.MediaRef
}

// Model is the bubbletea model for the watch view.
type Model struct {
	deps   Deps
	styles *Palette

	tab    Tab
	cursor map[Tab]int
	width  int
	height int

	tasksOn  bool
	tasksGen uint64
	queueOn  bool
	queueGen uint64

	quitting bool
	err      error
}

type tickMsg time.Time

type actionDoneMsg struct {
	verb string
	err  error
}

type extrasLoadedMsg struct{ err error }

// NewModel creates the watch model. Feeds stay inactive until Init runs.
func NewModel(deps Deps) *Model {
	return &Model{
		deps:   deps,
		styles: NewPalette(),
		cursor: map[Tab]int{},
	}
}

// Init activates the initial tab's feed and starts the redraw ticker.
func (m *Model) Init() tea.Cmd {
	m.applyTab(m.tab)
	return tea.Batch(m.loadExtras(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		m.deps.TasksLC.SetVisible(true)
		m.deps.QueueLC.SetVisible(true)
		return m, nil

	case tea.BlurMsg:
		m.deps.TasksLC.SetVisible(false)
		m.deps.QueueLC.SetVisible(false)
		return m, nil

	case tickMsg:
		return m, tick()

	case actionDoneMsg:
		// Failures surface through the notice board; nothing else to do.
		return m, nil

	case extrasLoadedMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.shutdownFeeds()
		return m, tea.Quit
	case "tab":
		m.switchTab((m.tab + 1) % 3)
		return m, nil
	case "shift+tab":
		m.switchTab((m.tab + 2) % 3)
		return m, nil
	case "1":
		m.switchTab(TabTasks)
		return m, nil
	case "2":
		m.switchTab(TabQueue)
		return m, nil
	case "3":
		m.switchTab(TabExtras)
		return m, nil
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "f":
		if m.tab == TabTasks {
			return m, m.forceSelectedTask()
		}
	case "d":
		if m.tab == TabExtras {
			return m, m.downloadSelected()
		}
	case "x":
		if m.tab == TabExtras {
			return m, m.deleteSelected()
		}
	case "u":
		if m.tab == TabExtras {
			return m, m.unbanSelected()
		}
	case "r":
		return m, m.loadExtras()
	}
	return m, nil
}

// switchTab moves the view and re-routes feed activation: the tasks feed
// serves the tasks tab, the queue feed serves both the queue and extras
// tabs.
func (m *Model) switchTab(next Tab) {
	if next == m.tab {
		return
	}
	m.tab = next
	m.applyTab(next)
}

func (m *Model) applyTab(tab Tab) {
	wantTasks := tab == TabTasks
	wantQueue := tab == TabQueue || tab == TabExtras

	if wantTasks && !m.tasksOn {
		m.tasksGen = m.deps.TasksFeed.Activate(common.FEED_TASKS)
		m.tasksOn = true
	}
	if !wantTasks && m.tasksOn {
		m.deps.TasksFeed.Deactivate(common.FEED_TASKS, m.tasksGen)
		m.tasksOn = false
	}
	m.deps.TasksLC.SetActive(wantTasks)

	if wantQueue && !m.queueOn {
		m.queueGen = m.deps.QueueFeed.Activate(common.FEED_QUEUE)
		m.queueOn = true
	}
	if !wantQueue && m.queueOn {
		m.deps.QueueFeed.Deactivate(common.FEED_QUEUE, m.queueGen)
		m.queueOn = false
	}
	m.deps.QueueLC.SetActive(wantQueue)
}

func (m *Model) shutdownFeeds() {
	if m.tasksOn {
		m.deps.TasksFeed.Deactivate(common.FEED_TASKS, m.tasksGen)
		m.tasksOn = false
	}
	if m.queueOn {
		m.deps.QueueFeed.Deactivate(common.FEED_QUEUE, m.queueGen)
		m.queueOn = false
	}
	m.deps.TasksLC.SetActive(false)
	m.deps.QueueLC.SetActive(false)
}

func (m *Model) rowCount() int {
	switch m.tab {
	case TabTasks:
		return len(m.deps.Tasks.Tasks())
	case TabQueue:
		return len(m.deps.Queue.Items())
	case TabExtras:
		return len(m.deps.Extras.Store().Records())
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	n := m.rowCount()
	if n == 0 {
		m.cursor[m.tab] = 0
		return
	}
	c := m.cursor[m.tab] + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	m.cursor[m.tab] = c
}

func (m *Model) selectedExtra() (extrasync.ExtraRecord, bool) {
	records := m.deps.Extras.Store().Records()
	c := m.cursor[TabExtras]
	if c < 0 || c >= len(records) {
		return extrasync.ExtraRecord{}, false
	}
	return records[c], true
}

func (m *Model) forceSelectedTask() tea.Cmd {
	tasks := m.deps.Tasks.Tasks()
	c := m.cursor[TabTasks]
	if c < 0 || c >= len(tasks) {
		return nil
	}
	id := tasks[c].Id
	done := m.deps.Tasks.ForceExecute(context.Background(), id)
	board := m.deps.Board
	return func() tea.Msg {
		err := <-done
		if board != nil {
			if err != nil {
				board.Notify(extrasync.Notice{Message: fmt.Sprintf("Task run failed: %s", err), Success: false})
			} else {
				board.Notify(extrasync.Notice{Message: "Task executed", Success: true})
			}
		}
		return actionDoneMsg{verb: "force", err: err}
	}
}

func (m *Model) downloadSelected() tea.Cmd {
	rec, ok := m.selectedExtra()
	if !ok {
		return nil
	}
	done := m.deps.Extras.Download(context.Background(), rec.Key())
	return awaitAction("download", done)
}

func (m *Model) deleteSelected() tea.Cmd {
	rec, ok := m.selectedExtra()
	if !ok {
		return nil
	}
	done := m.deps.Extras.Delete(context.Background(), rec.Key())
	return awaitAction("delete", done)
}

func (m *Model) unbanSelected() tea.Cmd {
	rec, ok := m.selectedExtra()
	if !ok {
		return nil
	}
	done := m.deps.Extras.Unban(context.Background(), rec.Key())
	return awaitAction("unban", done)
}

func awaitAction(verb string, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{verb: verb, err: <-done}
	}
}

func (m *Model) loadExtras() tea.Cmd {
	extras := m.deps.Extras
	params := &common.ExtrasListParams{MediaRef: m.deps.Media}
	return func() tea.Msg {
		return extrasLoadedMsg{err: extras.Load(context.Background(), params)}
	}
}

// BoardNotifier wraps a Board so posted notices auto-dismiss after the
// board's TTL; replaced notices are left alone.
func BoardNotifier(board *extrasync.Board) extrasync.Notifier {
	return extrasync.NotifierFunc(func(n extrasync.Notice) {
		seq := board.Post(n)
		time.AfterFunc(board.TTL(), func() { board.Expire(seq) })
	})
}

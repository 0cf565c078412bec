package cmd

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/internal/feed"
	"github.com/extrarr/extrarr/internal/monitor"
	"github.com/extrarr/extrarr/internal/tui"
	"github.com/extrarr/extrarr/pkg/extracli"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

var watchFlags = mediaFlags

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, "watch")
	}
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		printRuntimeErr(ctx, "watch", "load_config", err)
		return nil
	}

	// Stdout belongs to the view, so logs go to a file.
	l := fileLogger("watch.log")
	client := extracli.NewClient(cfg.DaemonAddr, l)
	defer client.Close()

	board := extrasync.NewBoard(time.Duration(cfg.NoticeSeconds) * time.Second)
	notifier := tui.BoardNotifier(board)

	tasksMon := monitor.NewTaskMonitor(client, l)
	queueMon := monitor.NewQueueMonitor(client, l)
	extras := monitor.NewExtrasController(client, notifier, l)
	transport := monitor.NewFeedTransport(client, tasksMon, queueMon, extras, l)

	// Resuming delivery refreshes immediately instead of waiting out a poll
	// interval.
	tasksLC := feed.NewLifecycle(resumeHook(transport, common.FEED_TASKS))
	queueLC := feed.NewLifecycle(resumeHook(transport, common.FEED_QUEUE))

	reg := feed.NewRegistry()
	tasksSel := feed.NewSelector(reg, tasksLC, transport, l)
	queueSel := feed.NewSelector(reg, queueLC, transport, l)
	if cfg.TasksPollMs > 0 {
		tasksSel.SetInterval(common.FEED_TASKS, time.Duration(cfg.TasksPollMs)*time.Millisecond)
	}
	if cfg.QueuePollMs > 0 {
		queueSel.SetInterval(common.FEED_QUEUE, time.Duration(cfg.QueuePollMs)*time.Millisecond)
	}

	m := tui.NewModel(tui.Deps{
		Tasks:     tasksMon,
		Queue:     queueMon,
		Extras:    extras,
		Board:     board,
		TasksFeed: tasksSel,
		QueueFeed: queueSel,
		TasksLC:   tasksLC,
		QueueLC:   queueLC,
		Media:     mediaRef(ctx),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		printRuntimeErr(ctx, "watch", "run", err)
	}
	return nil
}

func resumeHook(tr *monitor.FeedTransport, feedName string) func(bool) {
	return func(deliver bool) {
		if !deliver {
			return
		}
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tr.Poll(rctx, feedName)
		}()
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/extrarr/extrarr/pkg/extrasync"
)

func queue(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, "queue")
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "queue", "get_client", err)
		return nil
	}
	defer client.Close()

	res, err := client.QueueList(context.Background())
	if err != nil {
		printRuntimeErr(ctx, "queue", "queue_list", err)
		return nil
	}
	if len(res.Items) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	rows := make([][]string, 0, len(res.Items))
	for i := range res.Items {
		item := &res.Items[i]
		rows = append(rows, []string{
			shortId(item.JobId),
			item.DisplayName,
			item.Status.Glyph() + " " + string(item.Status),
			extrasync.TimeAgo(item.QueuedAt),
			item.DurationDisplay(),
		})
	}
	fmt.Println(renderTable(
		[]string{"JOB", "NAME", "STATUS", "QUEUED", "DURATION"},
		rows,
	))
	return nil
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

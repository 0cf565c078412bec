package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli"
)

func tasks(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, "tasks")
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "tasks", "get_client", err)
		return nil
	}
	defer client.Close()

	res, err := client.TaskList(context.Background())
	if err != nil {
		printRuntimeErr(ctx, "tasks", "task_list", err)
		return nil
	}
	if len(res.Tasks) == 0 {
		fmt.Println("no scheduled tasks")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(res.Tasks))
	for i := range res.Tasks {
		t := &res.Tasks[i]
		rows = append(rows, []string{
			t.Id,
			t.Name,
			t.IntervalDisplay(),
			string(t.Status),
			t.LastExecutionDisplay(),
			t.LastDurationDisplay(),
			t.NextExecutionDisplay(now),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "NAME", "INTERVAL", "STATUS", "LAST RUN", "DURATION", "NEXT RUN"},
		rows,
	))
	return nil
}

func force(ctx *cli.Context) error {
	taskId := ctx.Args().First()
	if taskId == "" || taskId == "help" {
		return cli.ShowCommandHelp(ctx, "force")
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "force", "get_client", err)
		return nil
	}
	defer client.Close()

	if err := client.ForceExecute(context.Background(), taskId); err != nil {
		printRuntimeErr(ctx, "force", "task_force", err)
		return nil
	}
	fmt.Printf("task %s executed\n", taskId)
	return nil
}

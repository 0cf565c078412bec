package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

func extrasList(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, "list")
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "extras", "get_client", err)
		return nil
	}
	defer client.Close()

	res, err := client.ExtrasList(context.Background(), &common.ExtrasListParams{
		MediaRef:  mediaRef(ctx),
		Blacklist: ctx.Bool("blacklist"),
	})
	if err != nil {
		printRuntimeErr(ctx, "extras", "extras_list", err)
		return nil
	}
	if len(res.Extras) == 0 {
		fmt.Println("no extras")
		return nil
	}
	fmt.Println(renderTable(
		[]string{"VIDEO", "TITLE", "TYPE", "STATUS", "REASON"},
		extraRows(res.Extras),
	))
	return nil
}

func extraRows(records []extrasync.ExtraRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.VideoId,
			r.ExtraTitle,
			r.ExtraType,
			r.Status.Glyph() + " " + string(r.Status),
			r.Reason,
		})
	}
	return rows
}

func extrasDownload(ctx *cli.Context) error {
	key, ok := extraKey(ctx)
	if !ok {
		return nil
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "extras", "get_client", err)
		return nil
	}
	defer client.Close()

	if err := client.StartDownload(context.Background(), key); err != nil {
		printRuntimeErr(ctx, "extras", "download", err)
		return nil
	}
	fmt.Printf("queued %s\n", key.VideoId)
	return nil
}

func extrasDelete(ctx *cli.Context) error {
	key, ok := extraKey(ctx)
	if !ok {
		return nil
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "extras", "get_client", err)
		return nil
	}
	defer client.Close()

	if err := client.DeleteExtra(context.Background(), key); err != nil {
		printRuntimeErr(ctx, "extras", "delete", err)
		return nil
	}
	fmt.Printf("deleted %s\n", key.VideoId)
	return nil
}

func extrasUnban(ctx *cli.Context) error {
	key, ok := extraKey(ctx)
	if !ok {
		return nil
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "extras", "get_client", err)
		return nil
	}
	defer client.Close()

	if err := client.RemoveBan(context.Background(), key); err != nil {
		printRuntimeErr(ctx, "extras", "unban", err)
		return nil
	}
	fmt.Printf("unbanned %s\n", key.VideoId)
	return nil
}

func extrasSearch(ctx *cli.Context) error {
	query := ctx.Args().First()
	if query == "help" {
		return cli.ShowCommandHelp(ctx, "search")
	}
	client, _, err := getClient(ctx)
	if err != nil {
		printRuntimeErr(ctx, "extras", "get_client", err)
		return nil
	}
	defer client.Close()

	count, err := client.Search(context.Background(), &common.SearchParams{
		MediaRef: mediaRef(ctx),
		Query:    query,
	}, func(r extrasync.ExtraRecord) {
		fmt.Printf("%s %-32s %-12s %s\n", r.Status.Glyph(), r.ExtraTitle, r.ExtraType, r.VideoId)
	})
	if err != nil {
		printRuntimeErr(ctx, "extras", "search", err)
		return nil
	}
	fmt.Printf("%d result(s)\n", count)
	return nil
}

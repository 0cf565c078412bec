package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "extrarr",
		HelpName:              "extrarr",
		Usage:                 "A live extras manager for your media library.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "extrarr <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the extrarr background service",
				Action:             daemonCmd,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DaemonDescription,
				Flags:              daemonFlags,
			},
			{
				Name:                   "watch",
				Aliases:                []string{"w"},
				Usage:                  "open the live tasks/queue/extras view",
				Action:                 watch,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            WatchDescription,
				UseShortOptionHandling: true,
				Flags:                  watchFlags,
			},
			{
				Name:               "tasks",
				Aliases:            []string{"t"},
				Usage:              "list the scheduled maintenance tasks",
				Action:             tasks,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        TasksDescription,
				Flags:              clientFlags,
			},
			{
				Name:               "force",
				Aliases:            []string{"f"},
				Usage:              "force-run a scheduled task by id",
				Action:             force,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ForceDescription,
				Flags:              clientFlags,
			},
			{
				Name:               "queue",
				Aliases:            []string{"q"},
				Usage:              "list the background job queue",
				Action:             queue,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        QueueDescription,
				Flags:              clientFlags,
			},
			{
				Name:         "extras",
				Aliases:      []string{"e"},
				Usage:        "list and manage extras for a media item",
				OnUsageError: usageErrorCallback,
				Subcommands: []cli.Command{
					{
						Name:                   "list",
						Aliases:                []string{"l"},
						Usage:                  "list extras for a media item",
						Action:                 extrasList,
						OnUsageError:           usageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Description:            ExtrasListDescription,
						UseShortOptionHandling: true,
						Flags:                  extrasListFlags,
					},
					{
						Name:                   "download",
						Aliases:                []string{"d"},
						Usage:                  "queue a download for an extra",
						Action:                 extrasDownload,
						OnUsageError:           usageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Description:            ExtrasDownloadDescription,
						UseShortOptionHandling: true,
						Flags:                  extrasActionFlags,
					},
					{
						Name:                   "delete",
						Aliases:                []string{"x"},
						Usage:                  "delete a downloaded extra",
						Action:                 extrasDelete,
						OnUsageError:           usageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Description:            ExtrasDeleteDescription,
						UseShortOptionHandling: true,
						Flags:                  extrasActionFlags,
					},
					{
						Name:                   "unban",
						Aliases:                []string{"u"},
						Usage:                  "remove an extra from the blacklist",
						Action:                 extrasUnban,
						OnUsageError:           usageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Description:            ExtrasUnbanDescription,
						UseShortOptionHandling: true,
						Flags:                  extrasActionFlags,
					},
					{
						Name:                   "search",
						Aliases:                []string{"s"},
						Usage:                  "search the catalog for extras",
						Action:                 extrasSearch,
						OnUsageError:           usageErrorCallback,
						CustomHelpTemplate:     CMD_HELP_TEMPL,
						Description:            ExtrasSearchDescription,
						UseShortOptionHandling: true,
						Flags:                  mediaFlags,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of extrarr",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		Action:                 watch,
		Flags:                  watchFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	return app.Run(args)
}

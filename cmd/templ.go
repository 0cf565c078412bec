package cmd

const DESCRIPTION = `Extrarr keeps the extras of your media library in sync: trailers,
featurettes and other bonus clips are discovered, downloaded and tracked
by a background daemon while the watch view mirrors its state live.`

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DaemonDescription = `extrarr daemon - run the background service

The daemon owns the extras catalog, the download queue and the scheduled
maintenance tasks. Clients reach it over JSON-RPC on HTTP; live views
subscribe to push feeds over WebSocket.
`

const WatchDescription = `extrarr watch - open the live view

A tabbed terminal view over the scheduled tasks, the download queue and
the extras of one media item. Updates arrive over a push channel when the
daemon supports it and fall back to polling otherwise.
`

const TasksDescription = `extrarr tasks - list the scheduled maintenance tasks

Prints one row per task with its interval, status, last run and the
countdown to the next run.
`

const ForceDescription = `extrarr force - force-run a scheduled task

Fires a one-shot execution of the task named by its id, e.g.:
        extrarr force refresh-extras
`

const QueueDescription = `extrarr queue - list the background job queue

Prints the queued, running and recently finished download jobs.
`

const ExtrasListDescription = `extrarr extras list - list extras for a media item

Prints the extras known for one media item. Pass --blacklist to print the
blacklisted releases instead.
`

const ExtrasDownloadDescription = `extrarr extras download - queue a download

Queues a download for the extra addressed by its video id, e.g.:
        extrarr extras download -m movie -i 1 seed-trailer-1
`

const ExtrasDeleteDescription = `extrarr extras delete - delete a downloaded extra

Deletes the downloaded file of the addressed extra. The catalog entry
stays and is listed as missing.
`

const ExtrasUnbanDescription = `extrarr extras unban - remove a blacklist entry

Removes the addressed extra from the blacklist so it can be downloaded
again.
`

const ExtrasSearchDescription = `extrarr extras search - search the catalog

Streams matching extras for one media item as they are found, e.g.:
        extrarr extras search -m movie -i 1 trailer
`

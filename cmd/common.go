package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli"

	"github.com/extrarr/extrarr/common"
	"github.com/extrarr/extrarr/internal/config"
	"github.com/extrarr/extrarr/pkg/extracli"
	"github.com/extrarr/extrarr/pkg/extrasync"
)

func help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		cli.ShowAppHelpAndExit(ctx, 0)
		return nil
	}
	err := cli.ShowCommandHelp(ctx, arg)
	if err != nil {
		return err
	}
	return printErrWithHelp(ctx, err)
}

func getVersion(ctx *cli.Context) error {
	fmt.Printf(
		"%s %s (%s_%s)\nBuild: %s=%s\n",
		ctx.App.Name,
		ctx.App.Version,
		runtime.GOOS,
		runtime.GOARCH,
		currentBuildArgs.Date, currentBuildArgs.Commit,
	)
	return nil
}

func printRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

func printErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			err := cli.ShowCommandHelp(ctx, ctx.Command.Name)
			if err != nil {
				fmt.Println(err.Error())
			}
		},
	)
}

func printErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			cli.ShowAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return help(ctx)
	}
	if strings.Contains(estr, "-version") ||
		strings.Contains(estr, "-v") {
		return getVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

func usageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return printErrWithCmdHelp(ctx, err)
	}
	return printErrWithHelp(ctx, err)
}

var clientFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, C",
		Usage: "path of the configuration file",
	},
}

var mediaFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "media-type, m",
		Usage: "media type of the item owning the extras",
		Value: "movie",
	},
	cli.Int64Flag{
		Name:  "media-id, i",
		Usage: "media id of the item owning the extras",
		Value: 1,
	},
}, clientFlags...)

var extrasListFlags = append([]cli.Flag{
	cli.BoolFlag{
		Name:  "blacklist, b",
		Usage: "list the blacklist instead of the extras",
	},
}, mediaFlags...)

var extrasActionFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "extra-type, t",
		Usage: "extra type of the addressed entry",
	},
	cli.StringFlag{
		Name:  "title, T",
		Usage: "title of the addressed entry",
	},
}, mediaFlags...)

// configPath resolves the config file location from the flag or the default.
func configPath(ctx *cli.Context) (string, error) {
	if path := ctx.String("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func loadConfig(ctx *cli.Context) (*config.Config, string, error) {
	path, err := configPath(ctx)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func getClient(ctx *cli.Context) (*extracli.Client, *config.Config, error) {
	cfg, _, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	return extracli.NewClient(cfg.DaemonAddr, debugLogger()), cfg, nil
}

// debugLogger returns a stderr logger when debug logging is switched on,
// nil otherwise.
func debugLogger() *log.Logger {
	if os.Getenv(common.DebugEnv) == "" {
		return nil
	}
	return log.New(os.Stderr, "extrarr: ", log.LstdFlags)
}

// fileLogger logs to a file in the config directory, for commands whose
// stdout is owned by a full-screen view. Falls back to a discarding logger.
func fileLogger(name string) *log.Logger {
	dir, err := config.Dir()
	if err == nil {
		if err = os.MkdirAll(dir, 0o755); err == nil {
			var f *os.File
			f, err = os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				return log.New(f, "", log.LstdFlags)
			}
		}
	}
	return log.New(io.Discard, "", 0)
}

func mediaRef(ctx *cli.Context) common.MediaRef {
	return common.MediaRef{
		MediaType: ctx.String("media-type"),
		MediaId:   ctx.Int64("media-id"),
	}
}

// extraKey builds the composite identity of one extra from the positional
// video id argument and the addressing flags. ok is false when no video id
// was given and the command help was shown instead.
func extraKey(ctx *cli.Context) (key extrasync.ExtraKey, ok bool) {
	videoId := ctx.Args().First()
	if videoId == "" || videoId == "help" {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return key, false
	}
	ref := mediaRef(ctx)
	return extrasync.ExtraKey{
		MediaType:  ref.MediaType,
		MediaId:    ref.MediaId,
		ExtraType:  ctx.String("extra-type"),
		ExtraTitle: ctx.String("title"),
		VideoId:    videoId,
	}, true
}

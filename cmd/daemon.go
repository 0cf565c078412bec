package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/extrarr/extrarr/internal/daemon"
)

var daemonFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "listen, l",
		Usage: "listen address override",
	},
	cli.BoolFlag{
		Name:  "no-store",
		Usage: "run without the persistent job store",
	},
}, clientFlags...)

func daemonCmd(ctx *cli.Context) error {
	cfg, cfgPath, err := loadConfig(ctx)
	if err != nil {
		printRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	if addr := ctx.String("listen"); addr != "" {
		cfg.ListenAddr = addr
	}
	storePath := cfg.StorePath(cfgPath)
	if ctx.Bool("no-store") {
		storePath = ""
	}

	l := log.New(os.Stderr, "", log.LstdFlags)
	d, err := daemon.New(cfg, storePath, l)
	if err != nil {
		printRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	d.Catalog().Load(daemon.SeedCatalog())

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Start(runCtx) }()

	select {
	case err = <-errCh:
	case <-runCtx.Done():
		l.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := d.Shutdown(shutdownCtx); serr != nil {
			l.Printf("shutdown: %v", serr)
		}
		err = <-errCh
	}
	if err != nil {
		printRuntimeErr(ctx, "daemon", "serve", err)
	}
	return nil
}

package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/backupstate/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	AdminAddr string `name:"admin-addr" help:"Override the admin API listen address"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if d.AdminAddr != "" {
		cfg.Daemon.AdminAddr = d.AdminAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, g.Logger, runtimeOptions{metrics: true, notify: true})
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	opts := daemon.Options{
		Checker:        rt.engine(),
		Store:          rt.store,
		Interval:       cfg.VerifyInterval(),
		AdminAddr:      cfg.Daemon.AdminAddr,
		MetricsHandler: rt.metricsHandler(),
		Logger:         g.Logger,
	}
	if cfg.WatchArtifacts() {
		opts.ArtifactRoot = cfg.Artifacts.Root
		opts.Artifacts = cfg.Artifacts.Files
	}

	dmn, err := daemon.New(opts)
	if err != nil {
		return err
	}
	return dmn.Run(ctx)
}

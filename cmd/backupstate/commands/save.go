package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/revision"
)

// errNotSaved is returned when the store reports a failed save; it maps to exit code 1.
var errNotSaved = errors.New("backup state was not saved")

// SaveCmd implements the 'save' command.
type SaveCmd struct {
	Info          map[string]string `help:"Backup metadata to record (repeatable)" placeholder:"KEY=VALUE"`
	StampRevision bool              `name:"stamp-revision" help:"Record the git revision of the artifact root"`
}

func (s *SaveCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx := context.Background()

	rt, err := newRuntime(ctx, cfg, g.Logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	info := make(map[string]any, len(s.Info)+1)
	for k, v := range s.Info {
		info[k] = v
	}
	if _, ok := info["timestamp"]; !ok {
		info["timestamp"] = time.Now().Format(time.RFC3339Nano)
	}

	if s.StampRevision {
		rev, err := revision.Detect(cfg.Artifacts.Root)
		if err != nil {
			g.Logger.Warn("Could not determine revision", logfields.Error(err))
		} else {
			info = rev.Apply(info)
			g.Logger.Debug("Stamped revision", logfields.Revision(rev.Commit))
		}
	}

	if !rt.store.Save(ctx, info) {
		return errNotSaved
	}
	_, _ = fmt.Fprintf(g.Stdout, "Backup state saved to %s\n", rt.store.Path())
	return nil
}

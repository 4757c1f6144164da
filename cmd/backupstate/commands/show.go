package commands

import (
	"context"
	"encoding/json"
	"fmt"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct{}

func (ShowCmd) Run(g *Global, root *CLI) error {
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

	res := rt.store.Load(ctx)
	if res.IsErr() {
		return res.UnwrapErr()
	}
	snap := res.Unwrap()
	if snap.IsNone() {
		_, _ = fmt.Fprintln(g.Stdout, "no backup state recorded")
		return nil
	}

	data, err := json.MarshalIndent(snap.Unwrap(), "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, string(data))
	return nil
}

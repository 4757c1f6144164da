package commands

import (
	"context"
	"encoding/json"

	"git.home.luguber.info/inful/backupstate/internal/logfields"
	"git.home.luguber.info/inful/backupstate/internal/server/responses"
)

// VerifyCmd implements the 'verify' command. It exits 0 whether or not drift is found.
type VerifyCmd struct {
	JSON bool `name:"json" help:"Print the verification report as JSON"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx := context.Background()

	rt, err := newRuntime(ctx, cfg, g.Logger, runtimeOptions{notify: true})
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	engine := rt.engine()
	if !v.JSON {
		engine.Verify(ctx)
		return nil
	}

	res := engine.Check(ctx)
	resp := responses.VerifyResponse{Verified: true}
	if res.IsErr() {
		g.Logger.Warn("Backup state verification failed", logfields.Error(res.UnwrapErr()))
		resp.Error = res.UnwrapErr().Error()
	} else {
		resp.Report = res.Unwrap()
	}

	enc := json.NewEncoder(g.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/backupstate/internal/config"
	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
	"git.home.luguber.info/inful/backupstate/internal/version"
)

// Global carries process-wide state shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"backupstate.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
	Save   SaveCmd   `cmd:"" help:"Save a snapshot of the current data store and artifacts"`
	Verify VerifyCmd `cmd:"" help:"Compare the live state against the saved snapshot"`
	Show   ShowCmd   `cmd:"" help:"Print the saved snapshot"`
	Daemon DaemonCmd `cmd:"" help:"Run periodic verification with an admin API"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = config.NewLogger(g.Stderr, config.LoggingConfig{}, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration file, falling back to defaults when it
// does not exist, and reconfigures logging from it.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if ferrors.HasCategory(err, ferrors.CategoryNotFound) {
		g.Logger.Debug("Configuration file not found, using defaults", slog.String("path", c.Config))
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	g.Logger = config.NewLogger(g.Stderr, cfg.Logging, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	cli := &CLI{}
	global := &Global{Logger: slog.Default(), Stdout: stdout, Stderr: stderr}

	exitCode := -1
	parser, err := kong.New(cli,
		kong.Name("backupstate"),
		kong.Description("Record and verify backup state for a deployed application."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Vars{"version": version.String()},
		kong.Bind(global, cli),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	if err := kctx.Run(); err != nil {
		adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		_, _ = fmt.Fprintln(stderr, adapter.FormatError(err))
		return adapter.ExitCodeFor(err)
	}
	return 0
}

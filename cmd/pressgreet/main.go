// Package main is the entry point for the pressgreet renderer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dshills/pressgreet/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                   "pressgreet",
		Usage:                  "Render content through greeting and script plugins",
		Version:                fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file (.toml, .yaml or .yml)",
				Sources: cli.EnvVars("PRESSGREET_CONFIG"),
			},
			&cli.StringSliceFlag{
				Name:    "plugins",
				Aliases: []string{"p"},
				Usage:   "Directory of Lua script plugins (repeatable)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Render a file, or stdin when no file is given",
				ArgsUsage: "[file]",
				Action:    renderAction,
			},
			{
				Name:      "watch",
				Usage:     "Render a file and re-render it when it or the configuration changes",
				ArgsUsage: "<file>",
				Action:    watchAction,
			},
			{
				Name:   "hooks",
				Usage:  "List registered hooks and their handler counts",
				Action: hooksAction,
			},
		},
	}
}

// newApp builds the application from the global flags.
func newApp(cmd *cli.Command) (*app.App, error) {
	level := cmd.String("log-level")
	if level != "" && !app.ValidLogLevel(level) {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return app.New(app.Options{
		ConfigPath: cmd.String("config"),
		PluginDirs: cmd.StringSlice("plugins"),
		LogLevel:   level,
		LogOutput:  cmd.Root().ErrWriter,
	})
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 1 {
		return fmt.Errorf("usage: pressgreet render [file]")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var out string
	if cmd.NArg() == 1 {
		out, err = a.RenderFile(cmd.Args().First())
	} else {
		out, err = a.RenderReader(cmd.Root().Reader)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.Root().Writer, out)
	return err
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: pressgreet watch <file>")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.Watch(ctx, cmd.Args().First(), cmd.Root().Writer)
}

func hooksAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	hooks := a.Hooks()
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	sort.Strings(names)

	w := cmd.Root().Writer
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%d\n", name, hooks[name])
	}
	for _, name := range a.Plugins() {
		fmt.Fprintf(w, "plugin\t%s\n", name)
	}
	return nil
}

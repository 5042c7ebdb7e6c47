package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/neox5/yamlenc/internal/app"
	"github.com/neox5/yamlenc/internal/config"
	"github.com/neox5/yamlenc/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "yaml-enc",
		Usage:     "External node classifier for Puppet backed by a tree of YAML files",
		Version:   version.String(),
		ArgsUsage: "[FQDN]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base",
				Aliases: []string{"b"},
				Usage:   "base directory of the YAML tree (default: first existing well-known path)",
				Sources: cli.EnvVars("YAML_ENC_BASE"),
			},
			&cli.StringFlag{
				Name:  "mode",
				Value: string(config.ModeClassify),
				Usage: "classify or import",
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "write resolution metrics in Prometheus text format to this path",
				Sources: cli.EnvVars("YAML_ENC_METRICS_FILE"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() > 1 {
		return fmt.Errorf("expected at most one FQDN, got %d arguments", cmd.NArg())
	}

	debug := cmd.Bool("debug")

	// Standard output carries the YAML document, logs go to stderr
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	settings := &config.Settings{
		BaseDir:     cmd.String("base"),
		Node:        cmd.Args().First(),
		Mode:        config.Mode(cmd.String("mode")),
		MetricsFile: cmd.String("metrics-file"),
		Debug:       debug,
	}

	application, err := app.New(settings, cmd.Reader, cmd.Writer)
	if err != nil {
		return err
	}
	slog.Debug("starting yaml-enc",
		"version", version.String(),
		"base", settings.BaseDir,
		"mode", settings.Mode,
		"node", settings.Node)

	return application.Run()
}

package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/neox5/yamlenc/internal/config"
	"github.com/neox5/yamlenc/internal/metric"
	"github.com/neox5/yamlenc/internal/node"
)

// App holds initialized application components.
type App struct {
	Settings *config.Settings
	Resolver *node.Resolver
	Metrics  *metric.Registry

	stdin  io.Reader
	stdout io.Writer
}

// New validates the settings and initializes the application.
func New(settings *config.Settings, stdin io.Reader, stdout io.Writer) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	metrics := metric.New()
	resolver := node.NewResolver(settings.BaseDir, node.WithObserver(metrics))

	return &App{
		Settings: settings,
		Resolver: resolver,
		Metrics:  metrics,
		stdin:    stdin,
		stdout:   stdout,
	}, nil
}

// Run executes the configured mode. Metrics are written even when the
// mode fails.
func (a *App) Run() error {
	var err error
	switch a.Settings.Mode {
	case config.ModeImport:
		err = a.importNodes()
	default:
		err = a.classify()
	}

	if a.Settings.MetricsFile != "" {
		if mErr := a.Metrics.WriteTextfile(a.Settings.MetricsFile); mErr != nil {
			err = errors.Join(err, mErr)
		}
	}
	return err
}

// classify prints one node, or every node when none was named.
func (a *App) classify() error {
	if a.Settings.Node != "" {
		n, err := a.Resolver.Resolve(a.Settings.Node)
		if err != nil {
			return err
		}
		flat, err := node.Flatten(n)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		return node.Encode(a.stdout, flat)
	}

	nodes, err := a.Resolver.ResolveAll()
	if err != nil {
		return err
	}
	flat, err := node.FlattenAll(nodes)
	if err != nil {
		return err
	}
	return node.Encode(a.stdout, flat)
}

func (a *App) importNodes() error {
	written, err := node.Import(a.stdin, a.Settings.BaseDir, a.Settings.Node)
	if err != nil {
		return err
	}
	slog.Info("imported nodes", "count", written, "base", a.Settings.BaseDir)
	return nil
}

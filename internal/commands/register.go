// Package commands contains the routesync CLI command definitions.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/dbroute/internal/app"
	"github.com/yanizio/dbroute/internal/config"
	"github.com/yanizio/dbroute/internal/logger"
)

// Deps are the seams the commands reach the outside world through.
type Deps struct {
	LoadConfig func() (*config.Config, error)
	OpenApp    func(ctx context.Context, cfg *config.Config) (*app.App, error)
	// Offline wires an App without a database for commands that only read
	// the handler registry.
	Offline func(cfg *config.Config) *app.App
	Logger  bool
}

// DefaultDeps returns the production wiring.
func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenApp:    app.Open,
		Offline:    app.Offline,
		Logger:     true,
	}
}

type session struct {
	deps Deps
	cfg  *config.Config
}

func (s *session) load(cmd *cobra.Command, _ []string) error {
	cfg, err := s.deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.cfg = cfg
	if s.deps.Logger {
		if _, err := logger.New(cfg.Paths.Root, cfg.Log.Tee, cfg.Log.Level); err != nil {
			return fmt.Errorf("start logger: %w", err)
		}
	}
	return nil
}

func (s *session) open(ctx context.Context) (*app.App, error) {
	return s.deps.OpenApp(ctx, s.cfg)
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(deps Deps) *cobra.Command {
	s := &session{deps: deps}

	rootCmd := &cobra.Command{
		Use:               "routesync",
		Short:             "Maintain database-backed slug routes",
		SilenceUsage:      true,
		PersistentPreRunE: s.load,
	}

	rootCmd.AddCommand(
		newDiscoverCmd(s),
		newRebuildCmd(s),
		newMigrateCmd(s),
		newLocalesCmd(s),
	)
	return rootCmd
}

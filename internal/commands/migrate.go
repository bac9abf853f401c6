package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/dbroute/internal/app"
)

type migrateOptions struct {
	print bool
}

func newMigrateCmd(s *session) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the routes and catalog tables",
		Example: `  # Apply migrations
  routesync migrate

  # Print the DDL without touching the database
  routesync migrate --print`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.print {
				for _, stmt := range app.Migrations() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", stmt)
				}
				return nil
			}

			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(app.Migrations()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.print, "print", false, "Print the DDL instead of applying it")
	return cmd
}

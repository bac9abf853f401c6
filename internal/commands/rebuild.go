package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/dbroute/internal/dbroute"
)

func newRebuildCmd(s *session) *cobra.Command {
	opts := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate every route record and print the route table",
		Long: `Enumerate every entity of every discovered type, upsert its route records,
and print the resulting route table.  Running it twice converges on the same
records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			table, err := a.NewLoader().Load(cmd.Context())
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), table, opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

func printTable(out io.Writer, t *dbroute.Table, format string) error {
	entries := t.Entries()

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tPATH\tHANDLER\tLOCALE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, e.Path, e.Handler, e.Params.Locale)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d route(s)\n", len(entries))
	return err
}

package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/dbroute/internal/locale"
)

func newLocalesCmd(s *session) *cobra.Command {
	opts := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "locales",
		Short: "List enabled locales with their names and flag classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := locale.Locales(s.cfg.Routing.EnabledLocales)
			out := cmd.OutOrStdout()

			if opts.output == "json" {
				return json.NewEncoder(out).Encode(infos)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CODE\tNAME\tFLAG\tDEFAULT")
			for _, i := range infos {
				def := ""
				if i.Code == s.cfg.Routing.DefaultLocale {
					def = "*"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.Code, i.Name, i.Flag, def)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

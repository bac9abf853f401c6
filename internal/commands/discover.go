package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/dbroute/internal/dbroute"
)

type outputOptions struct {
	output string
}

func newDiscoverCmd(s *session) *cobra.Command {
	opts := &outputOptions{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List route descriptors declared by registered controllers",
		Example: `  # Table of entity types, name prefixes, handlers, and templates
  routesync discover

  # As JSON
  routesync discover -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.deps.Offline(s.cfg)
			found, err := a.Discovery.Discover(cmd.Context())
			if err != nil {
				return err
			}
			return printDescriptors(cmd.OutOrStdout(), found, opts.output)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	return cmd
}

type descriptorView struct {
	Entity    string            `json:"entity"`
	Prefix    string            `json:"prefix"`
	Handler   string            `json:"handler"`
	Templates map[string]string `json:"templates,omitempty"`
}

func printDescriptors(out io.Writer, found dbroute.Discovered, format string) error {
	var views []descriptorView
	for _, typ := range found.Types() {
		for _, d := range found.For(typ) {
			views = append(views, descriptorView{
				Entity:    typ,
				Prefix:    d.NamePrefix,
				Handler:   d.Handler.String(),
				Templates: d.PathTemplates,
			})
		}
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	if len(views) == 0 {
		_, _ = fmt.Fprintln(out, "No route descriptors declared.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTITY\tPREFIX\tHANDLER\tTEMPLATES")
	for _, v := range views {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Entity, v.Prefix, v.Handler, formatTemplates(v.Templates))
	}
	return w.Flush()
}

func formatTemplates(t map[string]string) string {
	if len(t) == 0 {
		return "-"
	}
	locales := make([]string, 0, len(t))
	for l := range t {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	parts := make([]string, len(locales))
	for i, l := range locales {
		parts[i] = l + "=" + t[l]
	}
	return strings.Join(parts, " ")
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func listCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the components declared in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(g, cmd.ErrOrStderr(), envOptions{})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTAG\tCLASS\tTEMPLATE")
			for _, name := range e.registry.Names() {
				def, _ := e.registry.Definition(name)
				opts := def.Options()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, orDash(opts.Tag), orDash(opts.ClassName), source(e, name))
			}
			return w.Flush()
		},
	}
}

func source(e *env, name string) string {
	for _, c := range e.manifest.Components {
		if c.Name == name {
			t := strings.Join(strings.Fields(c.Template), " ")
			if len(t) > 40 {
				return t[:37] + "..."
			}
			return t
		}
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLangsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List the supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEXTENSIONS\tALIASES")
			for _, name := range a.registry.Names() {
				svc, _ := a.registry.Lookup(name)
				info := svc.Info()
				exts := append([]string(nil), info.Extensions...)
				if lc, ok := a.cfg.Languages[name]; ok {
					exts = append(exts, lc.Extensions...)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, strings.Join(exts, " "), strings.Join(info.Aliases, ", "))
			}
			return w.Flush()
		},
	}
}

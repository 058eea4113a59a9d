package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/oak/lang"
)

func newGrammarCmd(a *app) *cobra.Command {
	var listOnly bool
	var checkPath string

	cmd := &cobra.Command{
		Use:   "grammar <lang>",
		Short: "Verify and print a language's reference grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ok := a.registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown language %q (known: %v)", args[0], a.registry.Names())
			}
			info := svc.Info()
			grammar, err := lang.VerifyGrammar(info)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if checkPath != "" {
				text, err := input(cmd, checkPath)
				if err != nil {
					return err
				}
				d, err := lang.CheckGrammar(svc, checkPath, text)
				if err != nil {
					return err
				}
				if d != nil {
					fmt.Fprintln(out, d.Error())
					return fmt.Errorf("%s does not conform to the %s grammar", checkPath, info.Name)
				}
				fmt.Fprintf(out, "%s: conforms to the %s grammar\n", checkPath, info.Name)
				return nil
			}
			if listOnly {
				names := make([]string, 0, len(grammar))
				for name := range grammar {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			fmt.Fprintln(out, strings.TrimSpace(info.Grammar))
			return nil
		},
	}

	cmd.Flags().BoolVar(&listOnly, "productions", false, "list production names only")
	cmd.Flags().StringVar(&checkPath, "check", "", "check that a file's tokens conform to the grammar")

	return cmd
}

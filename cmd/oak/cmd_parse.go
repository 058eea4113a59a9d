package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/format"
	"github.com/dhamidi/oak/source"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var language string
	var includePositions bool
	var includeTrivia bool
	var colorMode string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			text, err := input(cmd, path)
			if err != nil {
				return err
			}
			svc, err := a.service(language, path, text)
			if err != nil {
				return err
			}

			doc := svc.Open(path, text)
			tree := doc.Tree(format.Options{Trivia: includeTrivia})
			out := cmd.OutOrStdout()

			styles := format.NewStyles(format.IsColorEnabled(colorMode, out))
			enc, err := format.NewEncoder(outputFormat, out, styles)
			if err != nil {
				return err
			}
			if te, ok := enc.(*format.TextEncoder); ok && includePositions {
				te.WithPositions()
			}
			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode %s: %w", outputFormat, err)
			}
			if outputFormat == "json" {
				fmt.Fprintln(out)
			}

			printDiagnostics(cmd, doc.Source(), doc.Diagnostics())
			return doc.Err()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "language name (default: detect from the file)")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "show line:column ranges instead of offsets")
	cmd.Flags().BoolVar(&includeTrivia, "trivia", false, "include whitespace and comments")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colour output (auto, always, never)")

	return cmd
}

func printDiagnostics(cmd *cobra.Command, text *source.Text, diags []*diag.Error) {
	w := cmd.ErrOrStderr()
	for _, d := range diags {
		fmt.Fprintln(w, d.Error())
	}
	if len(diags) > 0 {
		fmt.Fprintf(w, "%s: %d diagnostics\n", text.Origin(), len(diags))
	}
}

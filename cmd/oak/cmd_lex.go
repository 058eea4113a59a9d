package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/oak/format"
	"github.com/dhamidi/oak/source"
)

func newLexCmd(a *app) *cobra.Command {
	var outputFormat string
	var language string
	var colorMode string

	cmd := &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the tokens of a file",
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

			tokens, diags := svc.Tokens(path, text)
			out := cmd.OutOrStdout()
			styles := format.NewStyles(format.IsColorEnabled(colorMode, out))
			enc, err := format.NewEncoder(outputFormat, out, styles)
			if err != nil {
				return err
			}
			if err := enc.EncodeTokens(tokens); err != nil {
				return fmt.Errorf("encode %s: %w", outputFormat, err)
			}
			if outputFormat == "json" {
				fmt.Fprintln(out)
			}

			printDiagnostics(cmd, source.NewWithOrigin(path, text), diags)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "language name (default: detect from the file)")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colour output (auto, always, never)")

	return cmd
}

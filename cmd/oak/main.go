package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/oak/config"
	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/lang/calc"
	jsonlang "github.com/dhamidi/oak/lang/json"
)

const version = "0.1.0"

// app is the state shared by all commands once the configuration is loaded.
type app struct {
	configPath string
	verbosity  int
	cfg        *config.Config
	registry   *lang.Registry
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "oak:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "oak",
		Short:         "Incremental parsing engine and language server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newLexCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))
	rootCmd.AddCommand(newLangsCmd(a))
	rootCmd.AddCommand(newGrammarCmd(a))
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, "")
	if err != nil {
		return err
	}
	a.cfg = cfg

	verbosity := cfg.Log.Verbosity + a.verbosity
	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(verbosity, path)

	a.registry, err = newRegistry(cfg)
	return err
}

// newRegistry builds the language registry the configuration describes.
func newRegistry(cfg *config.Config) (*lang.Registry, error) {
	var calcOpts []calc.Option
	if cfg.Parse.StepBudget > 0 {
		calcOpts = append(calcOpts, calc.WithStepBudget(cfg.Parse.StepBudget))
	}
	registry := lang.NewRegistry(
		lang.NewService[calc.TokenKind, calc.NodeKind](calc.New(calcOpts...)),
		lang.NewService[jsonlang.TokenKind, jsonlang.NodeKind](jsonlang.New(jsonlang.Options{
			Comments:       cfg.JSON.Comments,
			TrailingCommas: cfg.JSON.TrailingCommas,
			SingleQuotes:   cfg.JSON.SingleQuotes,
			BareKeys:       cfg.JSON.BareKeys,
			StepBudget:     cfg.Parse.StepBudget,
		})),
	)
	for name, lc := range cfg.Languages {
		if err := registry.SetExtensions(name, lc.Extensions); err != nil {
			return nil, fmt.Errorf("config %s: %w", cfg.Path, err)
		}
	}
	return registry, nil
}

// input reads a file, or standard input for "-".
func input(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// service picks the language for path: the named one, or the one detected
// from the file name and content.
func (a *app) service(name, path, text string) (lang.Service, error) {
	if name != "" {
		svc, ok := a.registry.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown language %q (known: %v)", name, a.registry.Names())
		}
		return svc, nil
	}
	svc, ok := a.registry.Detect(filepath.Base(path), []byte(text))
	if !ok {
		return nil, fmt.Errorf("cannot detect the language of %s, use --lang", path)
	}
	return svc, nil
}

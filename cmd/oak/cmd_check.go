package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/workspace"
)

func newCheckCmd(a *app) *cobra.Command {
	var language string
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report syntax errors in files",
		Long:  "Report syntax errors in files. With --watch, check every file with a known language under a directory and re-check files as they change.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if len(args) != 1 {
					return fmt.Errorf("--watch takes one directory")
				}
				return a.watch(cmd, args[0], interval)
			}

			failed := 0
			for _, path := range args {
				text, err := input(cmd, path)
				if err != nil {
					return err
				}
				svc, err := a.service(language, path, text)
				if err != nil {
					return err
				}
				doc := svc.Open(path, text)
				diags := doc.Diagnostics()
				for _, d := range diags {
					fmt.Fprintln(cmd.OutOrStdout(), d.Error())
				}
				if len(diags) > 0 || doc.Err() != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have syntax errors", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "lang", "l", "", "language name (default: detect from each file)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch a directory and re-check changed files")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval for --watch")

	return cmd
}

func (a *app) watch(cmd *cobra.Command, dir string, interval time.Duration) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	out := cmd.OutOrStdout()
	store := workspace.New(a.registry)
	w := workspace.NewWatcher(store, dir,
		workspace.WithInterval(interval),
		workspace.OnChange(func(e *workspace.Entry) {
			e.Read(func(doc lang.Document) error {
				diags := doc.Diagnostics()
				for _, d := range diags {
					fmt.Fprintln(out, d.Error())
				}
				if len(diags) == 0 {
					fmt.Fprintf(out, "%s: ok\n", e.Path())
				}
				return nil
			})
		}),
		workspace.OnRemove(func(uri string) {
			fmt.Fprintf(out, "%s: removed\n", workspace.PathFromURI(uri))
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	w.Start()
	<-ctx.Done()
	w.Stop()
	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/oak/lsp"
)

func newLSPCmd(a *app) *cobra.Command {
	var tcpAddr, wsAddr, httpAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long:  "Start the language server. It speaks on standard input and output unless an address is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.New(a.registry, lsp.Options{
				Name:    a.cfg.Server.Name,
				Version: version,
				Debug:   a.verbosity > 1,
			})
			switch {
			case tcpAddr != "":
				return server.RunTCP(tcpAddr)
			case wsAddr != "":
				return server.RunWebSocket(wsAddr)
			case httpAddr != "":
				return server.RunHTTP(httpAddr)
			}
			return server.RunStdio(os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "listen for TCP connections on this address")
	cmd.Flags().StringVar(&wsAddr, "websocket", "", "listen for WebSocket connections on this address")
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve POST /rpc on this address")
	cmd.MarkFlagsMutuallyExclusive("tcp", "websocket", "http")

	return cmd
}

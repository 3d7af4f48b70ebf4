package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	loomerrors "github.com/loomui-dev/loom/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Server-driven reactive UI for Go",
		Long: `Loom runs reactive UIs on the server.

State lives in cells, updates flush in coalesced turns, and DOM
patches stream to the browser over a WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var le *loomerrors.Error
		if errors.As(err, &le) {
			fmt.Fprint(os.Stderr, le.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

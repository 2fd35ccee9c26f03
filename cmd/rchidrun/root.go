package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/RochdiFERjaoui1234/rchidrun/install"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

var rootCmd = &cobra.Command{
	Use:   "rchidrun",
	Short: "Run scripts in any language through cached WASM runtimes",
	Long: `rchidrun - a unified runner for scripts in arbitrary languages.

Each language is interpreted by a WebAssembly runtime module executed in a
WASI sandbox. Runtimes for predefined languages install from the wasmer
registry after a confirmation prompt; any other language installs from a
URL you provide. Installed runtimes are cached under ~/.rchidrun/plugins.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// fatal reports a fatal error and terminates with a non-zero exit code.
// Every failure path funnels through here so the message shape is uniform.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	os.Exit(1)
}

// newGate wires the store, installer, and prompt into a confirmation gate.
func newGate(cfg config, st *store.Store, log zerolog.Logger) *install.Gate {
	fetcher := &install.WasmerFetcher{Bin: cfg.WasmerBin}
	installer := install.New(st, fetcher,
		install.WithLogger(log),
		install.WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout}),
	)
	return install.NewGate(st, installer, terminalPrompter{}, install.WithGateLogger(log))
}

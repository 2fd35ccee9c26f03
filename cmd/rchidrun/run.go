package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RochdiFERjaoui1234/rchidrun/engine"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

var runCmd = &cobra.Command{
	Use:   "run <language> <script>",
	Short: "Run a script with a language runtime",
	Long: `Execute a script using the WASM runtime for the given language.

If no runtime is cached for the language you are asked to confirm the
install (predefined languages) or to provide a runtime URL (anything
else). The process exit code is the script's own exit code.`,
	Args: cobra.ExactArgs(2),
	Run:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) {
	lang, script := args[0], args[1]
	log := newLogger(cmd)

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}

	st, err := store.New(cfg.Home)
	if err != nil {
		fatal(err)
	}

	ctx := cmd.Context()

	modulePath, err := newGate(cfg, st, log).Ensure(ctx, lang)
	if err != nil {
		fatal(err)
	}

	engineOpts := []engine.Option{engine.WithLogger(log)}
	if cfg.MemoryLimitPages > 0 {
		engineOpts = append(engineOpts, engine.WithMemoryLimit(cfg.MemoryLimitPages))
	}
	if cfg.DiskCache {
		engineOpts = append(engineOpts, engine.WithCompilationCache(
			filepath.Join(cfg.Home, ".rchidrun", "cache")))
	}

	eng, err := engine.New(engineOpts...)
	if err != nil {
		fatal(err)
	}

	outcome, execErr := eng.Execute(ctx, modulePath, script)
	eng.Close()

	if execErr != nil {
		if outcome.Trapped {
			// The sandbox contained the fault; report it and exit with the
			// mapped code instead of crashing the host.
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", execErr)
			os.Exit(outcome.ExitCode)
		}
		fatal(execErr)
	}
	os.Exit(outcome.ExitCode)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RochdiFERjaoui1234/rchidrun/language"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

var sdkCmd = &cobra.Command{
	Use:   "sdk",
	Short: "Manage installed language runtimes",
}

var sdkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed and supported languages",
	Args:  cobra.NoArgs,
	Run:   runSdkList,
}

var sdkInstallCmd = &cobra.Command{
	Use:   "install <language>",
	Short: "Install a language runtime without running anything",
	Args:  cobra.ExactArgs(1),
	Run:   runSdkInstall,
}

func init() {
	sdkCmd.AddCommand(sdkListCmd, sdkInstallCmd)
	rootCmd.AddCommand(sdkCmd)
}

func runSdkList(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	st, err := store.New(cfg.Home)
	if err != nil {
		fatal(err)
	}

	installed, err := st.Installed()
	if err != nil {
		fatal(err)
	}

	fmt.Println("Installed SDKs:")
	for _, lang := range installed {
		fmt.Printf("- %s\n", lang)
	}

	fmt.Println("\nSupported languages (via wasmer):")
	for _, lang := range language.Supported() {
		src, _ := language.Resolve(lang)
		pkg, _ := src.Registry()
		fmt.Printf("- %s (%s)\n", lang, pkg)
	}
}

func runSdkInstall(cmd *cobra.Command, args []string) {
	lang := args[0]
	log := newLogger(cmd)

	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	st, err := store.New(cfg.Home)
	if err != nil {
		fatal(err)
	}

	path, err := newGate(cfg, st, log).Ensure(cmd.Context(), lang)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Installed runtime for %q at %s\n", lang, path)
}

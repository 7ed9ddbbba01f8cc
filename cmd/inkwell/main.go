package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "A multi-role blogging platform built with Go, Echo, and templ",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the inkwell version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inkwell %s\n", version)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, seedCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

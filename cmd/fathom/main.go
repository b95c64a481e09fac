package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fathom/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fathom",
	Short: "Inspect debug-info type graphs for a Rust-like language",
	Long: `fathom loads type-graph manifests and answers the questions a debugger
asks about them: structure and children, C-ABI declarations, and the
runtime variant behind a tagged enum value.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(cabiCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "off", "trace level (off|op|detail|debug)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

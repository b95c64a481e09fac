package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fathom/internal/loader"
	"fathom/internal/trace"
	"fathom/internal/types"
)

// setupColor applies the --color flag to the global color state.
func setupColor(cmd *cobra.Command) error {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(flag)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", flag)
	}
	return nil
}

// newTracer builds a stderr tracer from the --trace flag.
func newTracer(cmd *cobra.Command) (trace.Tracer, error) {
	flag, err := cmd.Root().PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	level, err := trace.ParseLevel(flag)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		return trace.Nop, nil
	}
	return trace.NewStreamTracer(os.Stderr, level), nil
}

// findType resolves a user-supplied type spelling against a module: first
// as a manifest-local id, then as a display name.
func findType(mod *loader.Module, spelling string) (types.TypeRef, error) {
	if ref, ok := mod.ByID[spelling]; ok {
		return ref, nil
	}
	for _, ref := range mod.ByID {
		if mod.Registry.Name(ref) == spelling {
			return ref, nil
		}
	}
	return types.TypeRef{}, fmt.Errorf("no type %q in manifest", spelling)
}

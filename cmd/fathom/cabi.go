package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fathom/internal/cabi"
	"fathom/internal/loader"
)

var cabiCmd = &cobra.Command{
	Use:   "cabi [flags] manifest.toml type [varname]",
	Short: "Synthesize a C declaration for a type",
	Long: `Cabi renders the C view of a type: the declaration itself plus the
struct definitions it depends on, the way the expression evaluator
would feed them to a C compiler.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCabi,
}

func runCabi(cmd *cobra.Command, args []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}
	defer tracer.Close()

	varname := "value"
	if len(args) == 3 {
		varname = args[2]
	}

	mod, err := loader.Load(args[0], tracer)
	if err != nil {
		return err
	}
	ref, err := findType(mod, args[1])
	if err != nil {
		return err
	}

	m := cabi.NewTagMap(mod.Registry)
	decl, err := m.Declare(ref, varname)
	if err != nil {
		return err
	}
	if prelude := m.Prelude(); prelude != "" {
		fmt.Print(prelude)
	}
	fmt.Printf("%s;\n", decl)
	return nil
}

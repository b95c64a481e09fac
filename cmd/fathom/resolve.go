package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fathom/internal/dynamic"
	"fathom/internal/loader"
	"fathom/internal/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] manifest.toml type image.bin",
	Short: "Resolve a tagged enum value's runtime variant from a memory image",
	Long: `Resolve treats image.bin as a raw dump of target memory, reads the
enum's discriminant from it and reports which variant the value holds.`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("addr", "0", "load address of the value (accepts 0x prefix)")
	resolveCmd.Flags().String("base", "0", "address the image is mapped at (accepts 0x prefix)")
}

// imageMemory serves reads from a file-backed memory image mapped at a base
// address. Out-of-image reads fail like an inaccessible page would.
type imageMemory struct {
	base uint64
	data []byte
}

func (m *imageMemory) ReadUnsigned(addr uint64, byteSize uint64) (uint64, error) {
	if byteSize == 0 || byteSize > 8 {
		return 0, fmt.Errorf("unsupported read size %d", byteSize)
	}
	if addr < m.base || addr+byteSize > m.base+uint64(len(m.data)) {
		return 0, fmt.Errorf("address 0x%x not in image", addr)
	}
	off := addr - m.base
	var v uint64
	for i := uint64(0); i < byteSize; i++ {
		v |= uint64(m.data[off+i]) << (8 * i)
	}
	return v, nil
}

// staticValue is the CLI's stand-in for a debugger value object.
type staticValue struct {
	ref  types.TypeRef
	addr uint64
}

func (v staticValue) TypeRef() types.TypeRef      { return v.ref }
func (v staticValue) LoadAddress() (uint64, bool) { return v.addr, true }

func runResolve(cmd *cobra.Command, args []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}
	defer tracer.Close()

	addr, err := parseAddr(cmd, "addr")
	if err != nil {
		return err
	}
	base, err := parseAddr(cmd, "base")
	if err != nil {
		return err
	}

	mod, err := loader.Load(args[0], tracer)
	if err != nil {
		return err
	}
	ref, err := findType(mod, args[1])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read memory image: %w", err)
	}

	res := dynamic.NewResolver(mod.Registry, &imageMemory{base: base, data: data}, tracer)
	value := staticValue{ref: ref, addr: addr}
	if !res.CouldHaveDynamicType(value) {
		return fmt.Errorf("%s cannot have a dynamic type", mod.Registry.Name(ref))
	}
	variant, resolved, ok := res.Resolve(value)
	if !ok {
		fmt.Println("no dynamic type")
		return nil
	}
	fmt.Printf("%s @ 0x%x\n", mod.Registry.Name(variant), resolved)
	fmt.Println(mod.Registry.Describe(variant))
	return nil
}

func parseAddr(cmd *cobra.Command, name string) (uint64, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s value %q: %w", name, s, err)
	}
	return v, nil
}

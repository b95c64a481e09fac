package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fathom/internal/loader"
	"fathom/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] manifest.toml...",
	Short: "Print the type graph of one or more manifests",
	Long:  `Dump loads each manifest and prints its types: name, kind, size and child count.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("describe", false, "print full source-language descriptions")
	dumpCmd.Flags().Bool("no-cache", false, "bypass the manifest snapshot cache")
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	kindColor   = color.New(color.FgYellow)
	nameColor   = color.New(color.Bold)
)

func runDump(cmd *cobra.Command, args []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	tracer, err := newTracer(cmd)
	if err != nil {
		return err
	}
	defer tracer.Close()

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	describe, err := cmd.Flags().GetBool("describe")
	if err != nil {
		return fmt.Errorf("failed to get describe flag: %w", err)
	}

	var cache *loader.Cache
	if !noCache {
		cache, err = loader.OpenCache("fathom")
		if err != nil {
			return fmt.Errorf("failed to open snapshot cache: %w", err)
		}
	}

	// Manifests are independent, load them concurrently.
	mods := make([]*loader.Module, len(args))
	var g errgroup.Group
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			mod, err := loader.LoadCached(path, cache, tracer)
			if err != nil {
				return err
			}
			mods[i] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, mod := range mods {
		if i > 0 {
			fmt.Println()
		}
		headerColor.Printf("%s\n", args[i])
		printTypeTable(mod)
		if describe {
			printDescriptions(mod)
		}
	}
	return nil
}

// tableRow is one line of the dump table.
type tableRow struct {
	name, kind, size, children string
}

func printTypeTable(mod *loader.Module) {
	reg := mod.Registry
	ids := make([]string, 0, len(mod.ByID))
	for id := range mod.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]tableRow, 0, len(ids))
	for _, id := range ids {
		ref := mod.ByID[id]
		rows = append(rows, tableRow{
			name:     reg.Name(ref),
			kind:     reg.KindOf(ref).String(),
			size:     strconv.FormatUint(reg.ByteSize(ref), 10),
			children: strconv.Itoa(reg.NumChildren(ref)),
		})
	}

	nameW, kindW, sizeW := runewidth.StringWidth("type"), runewidth.StringWidth("kind"), runewidth.StringWidth("size")
	for _, r := range rows {
		nameW = max(nameW, runewidth.StringWidth(r.name))
		kindW = max(kindW, runewidth.StringWidth(r.kind))
		sizeW = max(sizeW, runewidth.StringWidth(r.size))
	}

	fmt.Printf("  %s  %s  %s  %s\n", pad("type", nameW), pad("kind", kindW), pad("size", sizeW), "children")
	for _, r := range rows {
		fmt.Printf("  %s  %s  %s  %s\n",
			nameColor.Sprint(pad(r.name, nameW)),
			kindColor.Sprint(pad(r.kind, kindW)),
			pad(r.size, sizeW),
			r.children)
	}
}

func printDescriptions(mod *loader.Module) {
	reg := mod.Registry
	ids := make([]string, 0, len(mod.ByID))
	for id := range mod.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ref := mod.ByID[id]
		if !reg.IsAggregate(ref) || reg.KindOf(ref) == types.KindArray {
			continue
		}
		fmt.Fprintf(os.Stdout, "\n%s\n", reg.Describe(ref))
	}
}

// pad right-pads to a display width, runewidth-aware so wide glyphs in
// type names keep columns aligned.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

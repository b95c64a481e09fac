package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fathom/internal/loader"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the manifest snapshot cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := loader.OpenCache("fathom")
		if err != nil {
			return err
		}
		fmt.Println(cache.Dir())
		return nil
	},
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete all cached snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := loader.OpenCache("fathom")
		if err != nil {
			return err
		}
		return cache.DropAll()
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheDropCmd)
}

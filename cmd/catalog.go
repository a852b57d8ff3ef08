package main

import (
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query WorldPop catalogue snapshots",
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

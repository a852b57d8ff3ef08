package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/catalog"
)

var (
	catalogSearchFile string
	catalogSearchURL  string
)

var catalogSearchCmd = &cobra.Command{
	Use:   "search <phrase>",
	Short: "List (country, version) pairs for datasets matching a phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		phrase := strings.Join(args, " ")

		var (
			table *catalog.Table
			err   error
		)
		switch {
		case catalogSearchFile != "":
			table, err = catalog.FromFile(catalogSearchFile)
		case catalogSearchURL != "":
			table, err = catalog.Fetch(ctx, catalogSearchURL)
		case cfg.Catalog.File != "":
			table, err = catalog.FromFile(cfg.Catalog.File)
		default:
			table, err = catalog.Fetch(ctx, cfg.Catalog.URL)
		}
		if err != nil {
			return eris.Wrap(err, "catalog search: load snapshot")
		}
		zap.L().Info("catalogue snapshot loaded",
			zap.Int("rows", len(table.Rows)),
			zap.Int("columns", len(table.Columns)),
		)

		rows := catalog.Search(table, phrase)
		if len(rows) == 0 {
			fmt.Printf("No datasets match %q\n", phrase)
			return nil
		}

		pairs, err := catalog.Versions(table, rows)
		if err != nil {
			return eris.Wrap(err, "catalog search: resolve columns")
		}

		fmt.Printf("%d dataset(s) match %q:\n", len(pairs), phrase)
		for _, pair := range pairs {
			fmt.Printf("  %s\t%s\n", pair.Country, pair.Version)
		}
		return nil
	},
}

func init() {
	catalogSearchCmd.Flags().StringVar(&catalogSearchFile, "file", "", "local catalogue snapshot (CSV or XLSX)")
	catalogSearchCmd.Flags().StringVar(&catalogSearchURL, "url", "", "catalogue CSV URL (overrides config)")
	catalogCmd.AddCommand(catalogSearchCmd)
}

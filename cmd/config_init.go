package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage popmap configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"

		if !configInitForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config init: encode")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "config init: write %s", path)
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

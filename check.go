package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tankarena/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and print the map",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func printSummary(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "addr:      %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "archive:   %s\n", cfg.Archive.Backend)
	fmt.Fprintf(w, "density:   %.2f\n", cfg.Game.BreakableDensity)
	fmt.Fprintf(w, "map:       %dx%d\n", len(cfg.Game.Map[0]), len(cfg.Game.Map))
	for _, row := range cfg.Game.Map {
		fmt.Fprintf(w, "  %s\n", row)
	}
}

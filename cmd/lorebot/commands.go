package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lorebot/internal/config"
	"lorebot/internal/retrieval"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the lore categories, their index state and question prefixes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, cat := range config.Categories {
			state := "not indexed"
			if _, err := os.Stat(filepath.Join(cfg.Storage.IndexDir, cat)); err == nil {
				state = "indexed"
			}
			fmt.Fprintf(os.Stdout, "%-10s %-12s %s\n", cat, state, strings.Join(retrieval.Aliases(cat), ", "))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lorebot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "lorebot version %s\n", version)
	},
}

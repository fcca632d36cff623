package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"lorebot/internal/config"
	"lorebot/internal/index"
	"lorebot/internal/llm"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the per-category vector indexes from lore documents",
	Long: `Build the per-category vector indexes from lore documents.

Each category is read from <data>/<category>/ and written to
<storage>/<category>/. A build fully replaces the category's previous index.
Categories without source documents are skipped and their existing index is
left untouched.

Examples:
  lorebot index
  lorebot index --category maps
  lorebot index --data ./lore --storage ./idx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("data"); v != "" {
			cfg.Storage.DataDir = v
		}
		if v, _ := cmd.Flags().GetString("storage"); v != "" {
			cfg.Storage.IndexDir = v
		}
		category, _ := cmd.Flags().GetString("category")

		embed, err := llm.NewEmbeddingFunc(cfg.Embedding)
		if err != nil {
			return err
		}

		chunker := index.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
		builder := index.NewBuilder(cfg.Storage.DataDir, cfg.Storage.IndexDir, chunker, embed)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if category != "" {
			if !validCategory(category) {
				return fmt.Errorf("unknown category %q", category)
			}
			printStep("indexing %s", category)
			stats, err := builder.BuildCategory(ctx, category)
			if err != nil {
				return err
			}
			reportStats(category, stats)
			return nil
		}

		printStep("indexing all categories from %s", cfg.Storage.DataDir)
		all, err := builder.BuildAll(ctx, config.Categories)
		if err != nil {
			return err
		}

		cats := make([]string, 0, len(all))
		for cat := range all {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			reportStats(cat, all[cat])
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().String("data", "", "lore documents root (default from config)")
	indexCmd.Flags().String("storage", "", "index output root (default from config)")
	indexCmd.Flags().String("category", "", "build a single category instead of all")
}

func reportStats(category string, stats index.Stats) {
	if stats.Skipped {
		printWarning("%s: no documents, skipped", category)
		return
	}
	printSuccess("%s: %d documents, %d chunks", category, stats.Documents, stats.Chunks)
}

func validCategory(category string) bool {
	for _, cat := range config.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

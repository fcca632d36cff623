package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "lorebot",
	Short: "Telegram lore assistant with retrieval-grounded answers",
	Long: `lorebot indexes a world's lore documents per category and answers
questions over Telegram, grounding every answer in the indexed text.

Typical flow:
  lorebot index            build the vector indexes from ./data
  lorebot run              start the bot and the ops server`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(indexCmd, runCmd, categoriesCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

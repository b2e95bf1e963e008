package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "movierag",
	Short: "Prepare movie records for embedding experiments",
	Long: `movierag turns a movie catalog into embeddable documents.

Each experiment picks a text-to-embed strategy deciding which text represents
a movie in the vector index; every movie field is kept as metadata.

Examples:
  movierag build --config exp.yaml > docs.jsonl
  movierag index --config exp.yaml
  movierag search --config exp.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/movierag/config.yaml if not provided)")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

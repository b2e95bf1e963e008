package main

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"movierag/internal/synthesis"
	"movierag/internal/tui"
)

func init() {
	rootCmd.AddCommand(buildCmd, indexCmd, searchCmd, strategiesCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Print the embeddable documents as JSON lines",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		movies, err := a.loadMovies()
		if err != nil {
			return err
		}
		docs, err := a.service.Build(cmd.Context(), movies)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		for _, d := range docs {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build, embed and store the catalog in the configured vector store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		movies, err := a.loadMovies()
		if err != nil {
			return err
		}
		summary, err := a.service.Index(cmd.Context(), movies)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Index the catalog and query it interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		movies, err := a.loadMovies()
		if err != nil {
			return err
		}
		summary, err := a.service.Index(cmd.Context(), movies)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		_, err = tea.NewProgram(tui.New(a.service, summary.String())).Run()
		return err
	},
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available text-to-embed strategies",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, n := range synthesis.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}

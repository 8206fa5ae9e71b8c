// Command metabase-mcp serves Metabase catalog retrieval as MCP tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "metabase-mcp",
	Short: "Metabase catalog retrieval for LLM tool calls",
	Long: `metabase-mcp exposes Metabase cards, dashboards, tables, databases, collections,
and fields to MCP clients, compacting responses so large batches fit a context window.`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(retrieveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

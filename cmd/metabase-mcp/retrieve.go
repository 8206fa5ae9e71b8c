package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/config"
	"github.com/spf13/cobra"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve entities once and print the JSON response",
	Example: `  metabase-mcp retrieve --model card --ids 1,2,3
  metabase-mcp retrieve --model database --ids 1 --table-offset 20 --table-limit 20`,
	RunE: runRetrieve,
}

var (
	retrieveModel string
	retrieveIDs   string
	tableOffset   int
	tableLimit    int
)

func init() {
	retrieveCmd.Flags().StringVar(&retrieveModel, "model", "", "card, dashboard, table, database, collection or field")
	retrieveCmd.Flags().StringVar(&retrieveIDs, "ids", "", "comma-separated entity IDs")
	retrieveCmd.Flags().IntVar(&tableOffset, "table-offset", 0, "database only: first table index")
	retrieveCmd.Flags().IntVar(&tableLimit, "table-limit", 0, "database only: tables per page (1-100)")
	retrieveCmd.MarkFlagRequired("model")
	retrieveCmd.MarkFlagRequired("ids")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	toolArgs, err := buildArgs(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.retriever.Retrieve(ctx, toolArgs, uuid.NewString())
	if err != nil {
		return err
	}

	body, err := resp.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}

// buildArgs turns flags into the argument map the retrieve tool receives.
func buildArgs(cmd *cobra.Command) (map[string]any, error) {
	ids, err := parseIDs(retrieveIDs)
	if err != nil {
		return nil, err
	}

	args := map[string]any{
		"model": retrieveModel,
		"ids":   ids,
	}
	if cmd.Flags().Changed("table-offset") {
		args["table_offset"] = tableOffset
	}
	if cmd.Flags().Changed("table-limit") {
		args["table_limit"] = tableLimit
	}
	return args, nil
}

func parseIDs(s string) ([]any, error) {
	var ids []any
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: must be an integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

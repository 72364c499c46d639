package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/cli"
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Check and complete words interactively, useful for testing and debugging",
	RunE:  runCLI,
}

func init() {
	cliCmd.Flags().Int("limit", 0, "suggestions to show (default from config)")
	cliCmd.Flags().Bool("no-filter", false, "disable input filtering (DBG only)")
}

func runCLI(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	noFilter, _ := cmd.Flags().GetBool("no-filter")
	cfg := app.cfg
	if limit <= 0 {
		limit = cfg.Server.SuggestionLimit
	}

	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	log.Debug("Input info:",
		"minPrefix", cfg.Server.MinPrefix,
		"maxPrefix", cfg.Server.MaxPrefix,
		"limit", limit,
		"noFilter", noFilter)
	h := cli.NewInputHandler(engine, os.Stdout, cfg.Server.MinPrefix, cfg.Server.MaxPrefix, limit, noFilter)
	return h.Start(os.Stdin)
}

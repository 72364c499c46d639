package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/logger"
	"github.com/bastiangx/spellserve/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server over stdio",
	RunE:  runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.cfg
	server := lsp.NewServer(os.Stdin, os.Stdout, engine, lsp.Options{
		Debounce:        time.Duration(cfg.Diagnostics.DebounceMs) * time.Millisecond,
		Workers:         cfg.Diagnostics.Workers,
		MaxDiagnostics:  cfg.Diagnostics.MaxPerDocument,
		CompletionLimit: cfg.Server.CompletionLimit,
		SuggestionLimit: cfg.Server.SuggestionLimit,
		MinPrefix:       cfg.Server.MinPrefix,
		MaxPrefix:       cfg.Server.MaxPrefix,
		UserDictPath:    userDictPath(),
		Version:         Version,
		Logger:          logger.New("lsp"),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

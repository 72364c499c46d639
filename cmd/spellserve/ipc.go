package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/logger"
	"github.com/bastiangx/spellserve/pkg/server"
)

var ipcCmd = &cobra.Command{
	Use:   "ipc",
	Short: "Serve msgpack requests over stdio",
	RunE:  runIPC,
}

func runIPC(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	cfg := app.cfg
	srv := server.NewServer(os.Stdin, os.Stdout, engine, server.Options{
		CompletionLimit: cfg.Server.CompletionLimit,
		SuggestionLimit: cfg.Server.SuggestionLimit,
		MinPrefix:       cfg.Server.MinPrefix,
		MaxPrefix:       cfg.Server.MaxPrefix,
		UserDictPath:    userDictPath(),
		Logger:          logger.New("ipc"),
	})
	if err := srv.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

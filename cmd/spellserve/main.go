// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the spellserve language server and its companion tools.

spellserve checks Polish text against an embedded word list plus user
dictionaries. Unknown words are reported as diagnostics, fixed with code
actions and completed as you type.

# Usage

Run the language server on stdio (the default command):

	spellserve
	spellserve lsp -d

Serve msgpack requests on stdio for non-LSP integrations:

	spellserve ipc

Check files from a shell or CI job:

	spellserve check notes.txt README.md

Try words interactively:

	spellserve cli

# Configuration

The config file is created with defaults in the user config directory
(for example ~/.config/spellserve/config.toml) and can be replaced with -c:

	[server]
	completion_limit = 50
	suggestion_limit = 10
	max_distance = 2

	[dict]
	user_file = "slownik.txt"

	[diagnostics]
	debounce_ms = 150

Every *.txt file in the dictionary directory is loaded as a user dictionary,
and words added from the editor are appended to user_file.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/logger"
	"github.com/bastiangx/spellserve/pkg/config"
)

// Version is set at build time.
var Version = "0.1.0-beta"

const (
	AppName = "spellserve"
	gh      = "https://github.com/bastiangx/spellserve"
)

// app holds what every subcommand shares after setup.
var app struct {
	cfg        *config.Config
	configPath string
	configDir  string
}

var rootCmd = &cobra.Command{
	Use:               AppName,
	Short:             "Polish spell checking language server",
	Long:              "spellserve checks Polish text against an embedded word list and user dictionaries",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runLSP,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "toggle debug logging")

	rootCmd.AddCommand(lspCmd, ipcCmd, checkCmd, cliCmd, configCmd, versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads the config and installs the logger before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	customPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, path, err := config.LoadConfigWithPriority(customPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	if err := logger.Setup(level, cfg.Log.Format); err != nil {
		log.Warn("invalid log settings", "err", err)
	}

	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	} else if dir, err = config.GetConfigDir(); err != nil {
		log.Warn("no config directory, user dictionaries disabled", "err", err)
		dir = ""
	}
	app.cfg, app.configPath, app.configDir = cfg, path, dir
	log.Debug("config loaded", "path", config.GetActiveConfigPath(path), "dict_dir", cfg.UserDictDir(dir))
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the active config file and user dictionary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "config:    ", config.GetActiveConfigPath(app.configPath))
		fmt.Fprintln(out, "dictionary:", userDictPath())
		return nil
	},
}

var configRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Overwrite the default config file with defaults",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := config.RebuildConfigFile()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change request limits in the active config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if app.configPath == "" {
			return fmt.Errorf("no config file to update")
		}
		pick := func(name string) *int {
			if !cmd.Flags().Changed(name) {
				return nil
			}
			v, _ := cmd.Flags().GetInt(name)
			return &v
		}
		return app.cfg.Update(app.configPath,
			pick("completion-limit"),
			pick("suggestion-limit"),
			pick("max-distance"))
	},
}

func init() {
	configSetCmd.Flags().Int("completion-limit", 0, "completions per request")
	configSetCmd.Flags().Int("suggestion-limit", 0, "corrections per unknown word")
	configSetCmd.Flags().Int("max-distance", 0, "largest edit distance for fuzzy matches")
	configCmd.AddCommand(configPathCmd, configRebuildCmd, configSetCmd)
}

package main

import (
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and runtime paths",
	Run: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		showVersion(verbose)
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "also print runtime paths")
}

func showVersion(verbose bool) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ spellserve ] Polish spell checking for your editor")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)

	if !verbose {
		return
	}
	pr, err := utils.NewPathResolver()
	if err != nil {
		logger.Error("cannot resolve paths", "err", err)
		return
	}
	info := pr.GetRuntimeInfo()
	logger.Print("")
	for _, k := range slices.Sorted(maps.Keys(info)) {
		logger.Print(k, "value", info[k])
	}
}

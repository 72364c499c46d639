package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bastiangx/spellserve/internal/cli"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Report unknown words in files, or stdin without arguments",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("workers", 4, "files checked in parallel")
	checkCmd.Flags().Int("limit", 3, "suggestions shown per word")
	checkCmd.Flags().String("color", "auto", "colorize output (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	limit, _ := cmd.Flags().GetInt("limit")
	colorMode, _ := cmd.Flags().GetString("color")

	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	var reports []cli.FileReport
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		reports = []cli.FileReport{{Path: "<stdin>", Findings: cli.CheckText(string(data), engine, limit)}}
	} else if reports, err = cli.CheckFiles(cmd.Context(), args, engine, workers, limit); err != nil {
		return err
	}

	var colorize bool
	switch colorMode {
	case "on":
		colorize = true
	case "off":
		colorize = false
	default:
		colorize = cli.IsTerminal(os.Stdout)
	}
	if n := cli.WriteReport(os.Stdout, reports, colorize); n > 0 {
		return fmt.Errorf("%d unknown words", n)
	}
	for _, r := range reports {
		if r.Err != nil {
			return fmt.Errorf("some files could not be read")
		}
	}
	return nil
}

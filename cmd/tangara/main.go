// Package main implements the tangara CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tangara/bindgen"
	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/registry"
)

var rootCmd = &cobra.Command{
	Use:           "tangara",
	Short:         "Tangara metadata and binding toolchain",
	Long:          `Tangara generates Go bindings from library metadata and exercises libraries through the registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
}

// logger is configured by setup before any command runs.
var logger = zap.NewNop()

func init() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(idCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(convertCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log generator and registry activity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(exitCode(err))
	}
}

// Exit statuses beyond the generic 1.
const (
	exitUsage    = 2
	exitNotFound = 3
	exitLibrary  = 4
)

// exitCode maps the kind of a failure to the process exit status.
func exitCode(err error) int {
	kind, ok := errors.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case errors.KindInvalidInput, errors.KindTypeMismatch, errors.KindOverflow, errors.KindOutOfBounds:
		return exitUsage
	case errors.KindNotFound:
		return exitNotFound
	case errors.KindLoadFailed, errors.KindDangling, errors.KindBusy:
		return exitLibrary
	}
	return 1
}

func setup(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", colorFlag)
	}

	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return err
	}
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
	}
	registry.SetLogger(logger)
	bindgen.SetLogger(logger)
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

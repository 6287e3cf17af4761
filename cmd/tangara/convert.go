package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/tangara/metaio"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert metadata between msgpack and YAML",
	Long:  "Read a metadata file and write it in the format the output extension selects (.tgm for msgpack, .yaml or .yml for YAML).",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := metaio.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := metaio.WriteFile(args[1], pkg); err != nil {
			return err
		}
		f, err := metaio.FormatFor(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %d types)\n", color.GreenString("wrote"), args[1], f, len(pkg.Types))
		return nil
	},
}

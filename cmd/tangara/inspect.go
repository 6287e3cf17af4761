package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/metaio"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <metadata>",
	Short: "Show the types and members of a metadata file",
	Long: `Print every type of a metadata package with its members and identities.

With -i the package is browsed interactively; when --plugin is given,
constructors, static methods and static properties can be called from the
browser.`,
	Args: cobra.ExactArgs(1),
	RunE: inspectExecution,
}

func init() {
	inspectCmd.Flags().BoolP("interactive", "i", false, "browse interactively")
	inspectCmd.Flags().String("plugin", "", "plugin to bind for interactive calls")
	inspectCmd.Flags().Bool("ids", false, "show member identities")
}

func inspectExecution(cmd *cobra.Command, args []string) error {
	interactive, err := cmd.Flags().GetBool("interactive")
	if err != nil {
		return err
	}
	pluginPath, err := cmd.Flags().GetString("plugin")
	if err != nil {
		return err
	}
	showIDs, err := cmd.Flags().GetBool("ids")
	if err != nil {
		return err
	}

	if interactive {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(args[0], pluginPath)
	}
	if pluginPath != "" {
		return fmt.Errorf("--plugin is only used with -i")
	}

	pkg, err := metaio.ReadFile(args[0])
	if err != nil {
		return err
	}
	printPackage(cmd.OutOrStdout(), pkg, showIDs)
	return nil
}

var (
	kindColor   = color.New(color.FgMagenta)
	typeColor   = color.New(color.FgCyan, color.Bold)
	memberColor = color.New(color.FgGreen)
	dimColor    = color.New(color.FgHiBlack)
)

func printPackage(w io.Writer, pkg *meta.Package, showIDs bool) {
	fmt.Fprintf(w, "%s %s %s\n", kindColor.Sprint("package"), typeColor.Sprint(pkg.Name), dimColor.Sprint(hexID(pkg.ID)))
	if pkg.Namespace != "" {
		fmt.Fprintf(w, "  namespace %s\n", pkg.Namespace)
	}
	for _, t := range pkg.Types {
		fmt.Fprintln(w)
		header := typeHeader(t)
		if t.Visibility != meta.Public {
			header = t.Visibility.String() + " " + header
		}
		fmt.Fprintf(w, "%s %s\n", typeColor.Sprint(header), dimColor.Sprint(hexID(t.ID)))
		for _, e := range entries(t) {
			line := "  " + kindColor.Sprintf("%-15s", e.kind) + " " + memberColor.Sprint(e.signature())
			if e.visibility != meta.Public {
				line += " " + dimColor.Sprint("["+e.visibility.String()+"]")
			}
			if showIDs && e.id != 0 {
				line += " " + dimColor.Sprint(hexID(e.id))
			}
			fmt.Fprintln(w, line)
		}
	}
}

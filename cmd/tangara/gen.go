package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/tangara/bindgen"
	"github.com/wippyai/tangara/config"
	"github.com/wippyai/tangara/metaio"
)

var genCmd = &cobra.Command{
	Use:   "gen [path]",
	Short: "Generate library glue and host bindings",
	Long:  "Generate the library entry point and the host bindings described by tangara.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  genExecution,
}

func init() {
	genCmd.Flags().Bool("entrypoint-only", false, "only write the library entry point")
	genCmd.Flags().Bool("bindings-only", false, "only write the host bindings")
	genCmd.Flags().Bool("dry-run", false, "generate without writing files")
}

func genExecution(cmd *cobra.Command, args []string) error {
	entryOnly, err := cmd.Flags().GetBool("entrypoint-only")
	if err != nil {
		return err
	}
	bindingsOnly, err := cmd.Flags().GetBool("bindings-only")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if entryOnly && bindingsOnly {
		return fmt.Errorf("--entrypoint-only and --bindings-only are mutually exclusive")
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	m, err := config.Discover(dir)
	if err != nil {
		return err
	}
	pkg, err := metaio.ReadFile(m.MetadataPath())
	if err != nil {
		return err
	}
	logger.Debug("loaded metadata", zap.String("package", pkg.Name), zap.Int("types", len(pkg.Types)))

	type job struct {
		what string
		path string
		run  func() ([]byte, error)
	}
	var jobs []job
	if !bindingsOnly {
		g := bindgen.New(m.EntrypointConfig()).WithLogger(logger)
		jobs = append(jobs, job{"entrypoint", m.Resolve(m.Config.Generate.Entrypoint), func() ([]byte, error) {
			return g.Entrypoint(pkg)
		}})
	}
	if !entryOnly {
		g := bindgen.New(m.BindingsConfig()).WithLogger(logger)
		jobs = append(jobs, job{"bindings", m.Resolve(m.Config.Generate.Bindings), func() ([]byte, error) {
			return g.Bindings(pkg)
		}})
	}

	out := cmd.OutOrStdout()
	for _, j := range jobs {
		src, err := j.run()
		if err != nil {
			return fmt.Errorf("%s: %w", j.what, err)
		}
		if dryRun {
			fmt.Fprintf(out, "%s %s (%d bytes, not written)\n", color.YellowString(j.what), j.path, len(src))
			continue
		}
		if err := bindgen.WriteFile(j.path, src); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", color.GreenString(j.what), j.path)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/tangara/identity"
	"github.com/wippyai/tangara/meta"
)

var idCmd = &cobra.Command{
	Use:   "id <package|type|member|method> <name> [param types...]",
	Short: "Compute a symbol identity",
	Long: `Print the keyed hash a package, type, member or method is addressed by.

Type names are namespace qualified (Ns.Name). Method identities include the
parameter types, written as type references such as Int, List<String> or
(Int, Double).`,
	Args: cobra.MinimumNArgs(2),
	RunE: idExecution,
}

func idExecution(cmd *cobra.Command, args []string) error {
	what, name, rest := args[0], args[1], args[2:]
	if what != "method" && len(rest) > 0 {
		return fmt.Errorf("%s identities take no parameter types", what)
	}

	var id uint64
	switch what {
	case "package":
		id = identity.PackageID(name)
	case "type":
		id = identity.TypeID(name)
	case "member":
		id = identity.MemberID(name)
	case "method":
		params := make([]identity.Shape, len(rest))
		for i, s := range rest {
			ref, err := meta.ParseTypeRef(s)
			if err != nil {
				return fmt.Errorf("parameter %d: %w", i, err)
			}
			params[i] = ref
		}
		id = identity.MethodID(name, params...)
	default:
		return fmt.Errorf("unknown identity kind %q (want package, type, member or method)", what)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hexID(id))
	return nil
}

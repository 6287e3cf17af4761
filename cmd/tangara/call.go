package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wippyai/tangara/meta"
)

var callCmd = &cobra.Command{
	Use:   "call <plugin> <metadata> <Type.member> [args...]",
	Short: "Call a library member through the registry",
	Long: `Load a plugin, bind it against its metadata and call one member.

Type.new calls a constructor, Type.method a method and Type.name reads a
property (or writes it when one argument is given). Instance members are
called on an object built with --ctor and --ctor-arg, closed afterwards.`,
	Args: cobra.MinimumNArgs(3),
	RunE: callExecution,
}

func init() {
	callCmd.Flags().Int("ctor", 0, "constructor index for new and instance members")
	callCmd.Flags().StringArray("ctor-arg", nil, "constructor argument (repeatable)")
}

func callExecution(cmd *cobra.Command, args []string) error {
	ctor, err := cmd.Flags().GetInt("ctor")
	if err != nil {
		return err
	}
	ctorArgs, err := cmd.Flags().GetStringArray("ctor-arg")
	if err != nil {
		return err
	}

	s, err := openSession(args[0], args[1])
	if err != nil {
		return err
	}
	defer s.Close()

	typeName, member, ok := cutLast(args[2], ".")
	if !ok {
		return fmt.Errorf("member %q is not of the form Type.member", args[2])
	}
	t, ok := s.pkg.Type(typeName)
	if !ok {
		return fmt.Errorf("type %s not found in %s", typeName, s.pkg.Name)
	}
	raw := args[3:]

	e, err := pickEntry(t, member, ctor, len(raw))
	if err != nil {
		return err
	}
	var out string
	if e.callable() {
		out, err = s.invoke(e, raw)
	} else {
		out, err = s.invokeInstance(e, ctor, ctorArgs, raw)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.CyanString(t.FullName()+"."+e.name), out)
	return nil
}

// pickEntry finds the member an invocation with n arguments refers to.
func pickEntry(t *meta.Type, member string, ctor, n int) (entry, error) {
	var candidates []entry
	for _, e := range entries(t) {
		switch {
		case member == "new" && e.kind == entryCtor:
			if e.ctor == ctor {
				return e, nil
			}
		case e.name == member && e.kind != entryCtor && e.kind != entryVariant:
			candidates = append(candidates, e)
		}
	}
	if member == "new" {
		return entry{}, fmt.Errorf("%s has no constructor #%d", t.FullName(), ctor)
	}
	for _, e := range candidates {
		if e.kind == entryMethod || e.kind == entryStaticMethod {
			if n <= len(e.args) && n >= requiredArgs(e.args) {
				return e, nil
			}
			continue
		}
		return e, nil
	}
	if len(candidates) > 0 {
		return entry{}, fmt.Errorf("no overload of %s.%s takes %d arguments", t.FullName(), member, n)
	}
	return entry{}, fmt.Errorf("%s has no member %s", t.FullName(), member)
}

func requiredArgs(args []meta.Argument) int {
	n := 0
	for _, a := range args {
		if a.Kind.Mode != meta.ByDefaultValue {
			n++
		}
	}
	return n
}

// invokeInstance builds an object with constructor ctor, uses it for e and
// closes it.
func (s *session) invokeInstance(e entry, ctor int, ctorRaw, raw []string) (string, error) {
	typeName := e.typ.FullName()
	ctors := e.typ.Constructors()
	if ctor < 0 || ctor >= len(ctors) {
		return "", fmt.Errorf("%s has no constructor #%d", typeName, ctor)
	}
	p := newArgParser(s.pkg)
	ctorArgs, err := p.parse(ctors[ctor].Args, ctorRaw)
	if err != nil {
		return "", err
	}
	obj, err := s.mod.New(typeName, ctor, ctorArgs...)
	if err != nil {
		return "", err
	}
	defer obj.Close()

	switch e.kind {
	case entryMethod:
		args, err := p.parse(e.args, raw)
		if err != nil {
			return "", err
		}
		res, err := obj.CallID(e.id, args...)
		if err != nil {
			return "", err
		}
		return describeResult(res, e.args, args), nil
	case entryProperty, entryField:
		if len(raw) == 0 {
			res, err := obj.Get(e.name)
			if err != nil {
				return "", err
			}
			return formatValue(res), nil
		}
		v, err := p.value(e.valueType, raw[0])
		if err != nil {
			return "", err
		}
		if err := obj.Set(e.name, v); err != nil {
			return "", err
		}
		return "= " + strings.Join(raw, " "), nil
	}
	return "", fmt.Errorf("%s %s is not callable", e.kind, e.name)
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

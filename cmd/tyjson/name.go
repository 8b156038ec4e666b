package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tyjson/internal/diag"
	"tyjson/internal/host"
	"tyjson/internal/manifest"
	"tyjson/internal/naming"
)

var nameCmd = &cobra.Command{
	Use:   "name <manifest> <path> [type-args...]",
	Short: "Print the stable name of a definition or instantiation",
	Long: `Print the stable name tyjson gives a definition. With type arguments, or
with --usage, the definition is resolved like a call site and the name of the
resulting instance is printed; ADTs print their instantiation name.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		usageStr, err := cmd.Flags().GetString("usage")
		if err != nil {
			return err
		}
		usage, resolve, err := readUsage(usageStr)
		if err != nil {
			return err
		}
		bag := diag.NewBag(16)
		unit, err := manifest.Load(args[0], diag.BagReporter{Bag: bag})
		if err != nil {
			if bag.Len() > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShortDiagnostics(bag.Items(), true))
			}
			return err
		}
		name, err := stableNameOf(unit, args[1], args[2:], usage, resolve || len(args) > 2)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
		return err
	},
}

func init() {
	nameCmd.Flags().String("usage", "", "resolve for this use (call|fnptr|vtable)")
}

func readUsage(s string) (usage host.Usage, resolve bool, err error) {
	switch strings.ToLower(s) {
	case "":
		return host.UsageCall, false, nil
	case "call":
		return host.UsageCall, true, nil
	case "fnptr":
		return host.UsageFnPtr, true, nil
	case "vtable":
		return host.UsageVtable, true, nil
	default:
		return 0, false, fmt.Errorf("invalid --usage value %q (expected call|fnptr|vtable)", s)
	}
}

func stableNameOf(unit *manifest.Unit, path string, typeArgs []string, usage host.Usage, resolve bool) (naming.StableName, error) {
	prog := unit.Program
	id, ok := prog.Lookup(path)
	if !ok {
		return "", fmt.Errorf("%s: no definition %s", unit.Path, path)
	}
	names := naming.NewMangler(prog)
	if !resolve {
		return names.DefName(id), nil
	}
	substs, err := unit.ParseArgs(typeArgs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	substs = prog.NormalizeSubsts(substs)

	def, _ := prog.Def(id)
	switch def.Kind {
	case host.DefStruct, host.DefEnum, host.DefUnion:
		return names.AdtName(host.AdtInstance{Def: id, Substs: substs}), nil
	}
	inst, ok := prog.Resolve(id, substs, usage)
	if !ok {
		return "", fmt.Errorf("cannot resolve %s%s for %s use", path, substs.Key(), usage)
	}
	return names.InstanceName(inst), nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/export"
	"github.com/matzehuels/photonkit/pkg/netlist"
	"github.com/matzehuels/photonkit/pkg/port"
)

// buildOpts holds options for the build command.
type buildOpts struct {
	set     []string
	output  string
	json    bool
	noPorts bool
	prefix  string
	kind    string
}

// buildCommand creates the build command for generating one cell.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{}

	cmd := &cobra.Command{
		Use:   "build <factory>",
		Short: "Build a cell and export its layout",
		Long: `Build one cell from the generator catalog.

Parameters are key=value pairs. Values that parse as JSON keep their type,
dotted keys nest, and cross-section and layer names resolve through the PDK.`,
		Example: `  photonkit build straight --set length=25
  photonkit build bend_euler --set radius=20 --set angle=180 -o bend.json
  photonkit build pad --set layer=M1 --set size.x=60 --set size.y=60 --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFactories,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.set, "set", "s", nil, "factory parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the flattened layout as JSON to this file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the flattened layout as JSON")
	cmd.Flags().BoolVar(&opts.noPorts, "no-ports", false, "omit the ports table")
	cmd.Flags().StringVar(&opts.prefix, "port-prefix", "", "only show ports whose name starts with this prefix")
	cmd.Flags().StringVar(&opts.kind, "port-type", "", "only show ports of this type (optical, electrical, placement)")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, factory string, opts buildOpts) error {
	reg, comp, err := c.buildComponent(cmd, factory, opts.set)
	if err != nil {
		return err
	}
	out := c.stdout()
	layers := reg.PDK().Layers

	if opts.json {
		return export.WriteJSON(comp, layers, out)
	}

	printSuccess(out, "Built %s", comp.Name())
	printStats(out, comp)
	if err := netlist.CheckAcyclic(comp); err != nil {
		printWarning(out, "%v", err)
	}
	if !opts.noPorts {
		printPorts(out, comp.SelectPorts(port.Filter{Prefix: opts.prefix, Type: port.Type(opts.kind)}), layers)
	}
	if opts.output != "" {
		if err := export.ExportJSON(comp, layers, opts.output); err != nil {
			return err
		}
		printFile(out, opts.output)
	} else {
		printNextStep(out, "Export", fmt.Sprintf("%s build %s%s -o %s.json", appName, factory, setFlags(opts.set), factory))
	}
	return nil
}

// buildComponent parses assignments and builds factory through a new
// registry.
func (c *CLI) buildComponent(cmd *cobra.Command, factory string, assignments []string) (*cells.Registry, *component.Component, error) {
	reg, err := c.newRegistry(cmd)
	if err != nil {
		return nil, nil, err
	}
	params, err := cells.ParseParams(assignments)
	if err != nil {
		return nil, nil, err
	}

	prog := newProgress(c.Logger)
	comp, err := reg.Build(factory, params)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", factory, err)
	}
	prog.done("built component", "factory", factory, "name", comp.Name())
	return reg, comp, nil
}

func setFlags(assignments []string) string {
	var b strings.Builder
	for _, a := range assignments {
		fmt.Fprintf(&b, " --set '%s'", a)
	}
	return b.String()
}

// completeFactories offers factory names for shell completion.
func (c *CLI) completeFactories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := c.newRegistry(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, name := range reg.Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

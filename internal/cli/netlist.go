package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/netlist"
)

// netlistOpts holds options for the netlist command.
type netlistOpts struct {
	set       []string
	format    string
	output    string
	tolerance float64
	hierarchy bool
}

// netlistCommand extracts instances and connections of a built cell.
func (c *CLI) netlistCommand() *cobra.Command {
	opts := netlistOpts{}

	cmd := &cobra.Command{
		Use:   "netlist <factory>",
		Short: "Extract the netlist of a cell",
		Long: `Build a cell and extract its netlist: instances, connections between
facing ports, and the ports the cell exposes.

Formats are json, dot and svg. With --hierarchy the DOT or SVG output shows
the component hierarchy instead of the connections.`,
		Example: `  photonkit netlist component_sequence --set sequence=ABA --format dot
  photonkit netlist delay_snake_sbend --format svg -o snake.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFactories,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNetlist(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.set, "set", "s", nil, "factory parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", netlist.DefaultTolerance, "port coincidence tolerance in µm")
	cmd.Flags().BoolVar(&opts.hierarchy, "hierarchy", false, "draw the component hierarchy (dot, svg)")

	return cmd
}

func (c *CLI) runNetlist(cmd *cobra.Command, factory string, opts netlistOpts) error {
	_, comp, err := c.buildComponent(cmd, factory, opts.set)
	if err != nil {
		return err
	}
	n, err := netlist.Build(comp, opts.tolerance)
	if err != nil {
		return err
	}
	c.Logger.Debug("netlist", "summary", n.Summary())

	var data []byte
	switch opts.format {
	case "json":
		data, err = json.MarshalIndent(n, "", "  ")
		data = append(data, '\n')
	case "dot":
		data = []byte(dot(n, comp, opts.hierarchy))
	case "svg":
		data, err = netlist.RenderSVG(cmd.Context(), dot(n, comp, opts.hierarchy))
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown netlist format %q", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = c.stdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printSuccess(c.stdout(), "%s", n.Summary())
	printFile(c.stdout(), opts.output)
	return nil
}

func dot(n *netlist.Netlist, comp *component.Component, hierarchy bool) string {
	if hierarchy {
		return netlist.ToDOT(comp, netlist.Options{Detailed: true})
	}
	return n.DOT()
}

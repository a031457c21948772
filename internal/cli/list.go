package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/pdk"
)

// listCommand prints the factories and the PDK's cross-sections.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List factories and cross-sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.newRegistry(cmd)
			if err != nil {
				return err
			}
			out := c.stdout()
			kit := reg.PDK()

			fmt.Fprintln(out, StyleTitle.Render("Factories"))
			for _, name := range reg.Names() {
				fmt.Fprintln(out, "  "+name)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, StyleTitle.Render("Cross-sections")+" "+StyleDim.Render("("+kit.Name+")"))
			def := kit.DefaultCrossSection()
			for _, name := range kit.CrossSectionNames() {
				xs, err := kit.CrossSection(name)
				if err != nil {
					return err
				}
				label := fmt.Sprintf("width %g, radius %g", xs.Width(), xs.Radius)
				if xs.Equal(def) {
					label += ", default"
				}
				printKeyValue(out, "  "+name, label)
			}
			return nil
		},
	}
}

// layersCommand prints the PDK's layer table.
func (c *CLI) layersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "Show the layer table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kit, err := loadPDK(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout(), layersTable(kit))
			return nil
		},
	}
}

func layersTable(kit *pdk.PDK) string {
	rows := make([][]string, 0, kit.Layers.Len())
	for _, name := range kit.Layers.Names() {
		l := kit.Layers.MustGet(name)
		rows = append(rows, []string{name, fmt.Sprint(l.Number), fmt.Sprint(l.Datatype)})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "Number", "Datatype").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FactoryListModel - Interactive factory selection
// =============================================================================

// factoryRow is one catalog entry with its default build.
type factoryRow struct {
	Name  string
	Ports int
	Size  string
	Err   string
}

// FactoryListModel is the bubbletea model for picking a factory.
type FactoryListModel struct {
	Rows     []factoryRow
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewFactoryListModel builds every factory of reg with default parameters
// and lists the results.
func NewFactoryListModel(reg *cells.Registry) FactoryListModel {
	rows := make([]factoryRow, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		row := factoryRow{Name: name}
		comp, err := reg.Build(name, nil)
		if err != nil {
			row.Err = string(errors.GetCode(err))
		} else {
			row.Ports = len(comp.Ports())
			bb := comp.BBox()
			if !bb.IsEmpty() {
				row.Size = fmt.Sprintf("%.4g × %.4g", bb.Width(), bb.Height())
			}
		}
		rows = append(rows, row)
	}
	return FactoryListModel{Rows: rows, Height: 15}
}

func (m FactoryListModel) Init() tea.Cmd {
	return nil
}

func (m FactoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) == 0 || m.Rows[m.Cursor].Err != "" {
				return m, nil
			}
			m.Selected = m.Rows[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m FactoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Factory"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ build  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		ports, size := fmt.Sprint(r.Ports), r.Size
		if r.Err != "" {
			ports, size = "—", r.Err
		}
		rows = append(rows, []string{cursor, r.Name, ports, size})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Factory", "Ports", "Size (µm)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			switch {
			case m.Rows[idx].Err != "":
				return listDimStyle
			case idx == m.Cursor:
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// browseCommand lets the user pick a factory and builds it with defaults.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a factory interactively and build it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.newRegistry(cmd)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(NewFactoryListModel(reg), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			selected := final.(FactoryListModel).Selected
			if selected == "" {
				return nil
			}
			return c.runBuild(cmd, selected, buildOpts{})
		},
	}
}

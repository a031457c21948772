package netlist

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/photonkit/pkg/component"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds port counts and extents to hierarchy labels.
	Detailed bool
}

// ToDOT draws the reference hierarchy of c: one node per distinct
// component, one edge per parent/child pair labelled with the number of
// placements.
func ToDOT(c *component.Component, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf, "TB")

	nodes := append([]*component.Component{c}, c.Descendants()...)
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.Name(), hierarchyLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		counts := make(map[string]int)
		for _, r := range n.References() {
			counts[r.Component().Name()] += r.Columns() * r.Rows()
		}
		for _, ch := range n.Children() {
			attrs := ""
			if k := counts[ch.Name()]; k > 1 {
				attrs = fmt.Sprintf(" [label=\"×%d\"]", k)
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", n.Name(), ch.Name(), attrs)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func hierarchyLabel(c *component.Component, detailed bool) string {
	if !detailed {
		return c.Name()
	}
	parts := []string{c.Name(), fmt.Sprintf("ports: %d", len(c.Ports()))}
	if !c.IsEmpty() {
		b := c.BBox()
		parts = append(parts, fmt.Sprintf("%.3g × %.3g", b.Width(), b.Height()))
	}
	return strings.Join(parts, "\n")
}

// DOT draws the netlist: instances as nodes, connections as undirected
// edges labelled with the joined ports, exposed ports as plain text nodes.
func (n *Netlist) DOT() string {
	var buf bytes.Buffer
	writeHeader(&buf, "LR")

	for _, inst := range n.Instances {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", inst.Name, inst.Name+"\n"+inst.Component)
	}
	buf.WriteString("\n")
	for _, c := range n.Connections {
		fmt.Fprintf(&buf, "  %q -> %q [dir=none, taillabel=%q, headlabel=%q];\n",
			c.A.Instance, c.B.Instance, c.A.Port, c.B.Port)
	}

	names := make([]string, 0, len(n.Ports))
	for name := range n.Ports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ep := n.Ports[name]
		id := "port:" + name
		fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=\"\"];\n", id, name)
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, headlabel=%q];\n", id, ep.Instance, ep.Port)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer, rankdir string) {
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

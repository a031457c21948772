// Package netlist extracts connectivity from a component hierarchy and
// renders it with Graphviz.
//
// A [Netlist] describes one level of a component: its instances with their
// placements, the connections between instance ports that coincide and face
// each other, and which instance port each top-level port was exposed from.
// [ToDOT] draws the reference hierarchy of every component below the top.
package netlist

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/port"
)

// DefaultTolerance is the distance under which two ports are considered
// coincident.
const DefaultTolerance = 1e-3

// Instance is one reference of the top-level component.
type Instance struct {
	Name      string         `json:"name"`
	Component string         `json:"component"`
	Transform geom.Transform `json:"transform"`
	Columns   int            `json:"columns,omitempty"`
	Rows      int            `json:"rows,omitempty"`
	Pitch     *geom.Point    `json:"pitch,omitempty"`
}

// Endpoint names a port of an instance.
type Endpoint struct {
	Instance string `json:"instance"`
	Port     string `json:"port"`
}

func (e Endpoint) String() string { return e.Instance + "," + e.Port }

// Connection joins two instance ports.
type Connection struct {
	A Endpoint `json:"a"`
	B Endpoint `json:"b"`
}

// Netlist is the connectivity of one component level.
type Netlist struct {
	Name        string              `json:"name"`
	Instances   []Instance          `json:"instances"`
	Connections []Connection        `json:"connections"`
	Ports       map[string]Endpoint `json:"ports"`
	// Open lists instance ports that are neither connected nor exposed.
	Open []Endpoint `json:"open,omitempty"`
}

type placed struct {
	ep Endpoint
	p  port.Port
}

// Build extracts the netlist of c's top level. Ports closer than tol are
// coincident; a non-positive tol selects [DefaultTolerance].
func Build(c *component.Component, tol float64) (*Netlist, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if err := CheckAcyclic(c); err != nil {
		return nil, err
	}
	n := &Netlist{Name: c.Name(), Ports: make(map[string]Endpoint)}

	var ports []placed
	for _, r := range c.References() {
		inst := Instance{
			Name:      r.Name(),
			Component: r.Component().Name(),
			Transform: r.Transform(),
		}
		ps := r.Ports()
		if r.IsArray() {
			inst.Columns, inst.Rows = r.Columns(), r.Rows()
			pitch := r.Pitch()
			inst.Pitch = &pitch
			ps = r.ArrayPorts()
		}
		n.Instances = append(n.Instances, inst)
		for _, p := range ps {
			ports = append(ports, placed{ep: Endpoint{Instance: r.Name(), Port: p.Name}, p: p})
		}
	}

	// Sweep in x so only nearby ports are compared.
	sort.SliceStable(ports, func(i, j int) bool { return ports[i].p.Center.X < ports[j].p.Center.X })
	used := make([]bool, len(ports))
	for i := range ports {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(ports) && ports[j].p.Center.X-ports[i].p.Center.X <= tol; j++ {
			if used[j] || ports[i].ep.Instance == ports[j].ep.Instance {
				continue
			}
			if ports[i].p.Faces(ports[j].p, tol) {
				n.Connections = append(n.Connections, connection(ports[i].ep, ports[j].ep))
				used[i], used[j] = true, true
				break
			}
		}
	}

	for _, top := range c.Ports() {
		for i, ip := range ports {
			if used[i] || !ip.p.Center.Near(top.Center, tol) {
				continue
			}
			if math.Abs(geom.AngleDiff(ip.p.Orientation, top.Orientation)) <= tol {
				n.Ports[top.Name] = ip.ep
				used[i] = true
				break
			}
		}
	}

	for i, ip := range ports {
		if !used[i] {
			n.Open = append(n.Open, ip.ep)
		}
	}
	sortEndpoints(n.Open)
	sort.Slice(n.Connections, func(i, j int) bool {
		return n.Connections[i].A.String() < n.Connections[j].A.String()
	})
	return n, nil
}

// connection orders the endpoints so equal netlists compare equal.
func connection(a, b Endpoint) Connection {
	if b.String() < a.String() {
		a, b = b, a
	}
	return Connection{A: a, B: b}
}

func sortEndpoints(eps []Endpoint) {
	sort.Slice(eps, func(i, j int) bool { return eps[i].String() < eps[j].String() })
}

// CheckAcyclic walks the reference hierarchy depth-first and fails with
// REFERENCE_CYCLE if a component references itself through any chain.
func CheckAcyclic(c *component.Component) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*component.Component]int)
	var cycle []string

	var dfs func(n *component.Component) bool
	dfs = func(n *component.Component) bool {
		color[n] = gray
		for _, ch := range n.Children() {
			switch color[ch] {
			case white:
				if dfs(ch) {
					cycle = append(cycle, n.Name())
					return true
				}
			case gray:
				cycle = append(cycle, ch.Name(), n.Name())
				return true
			}
		}
		color[n] = black
		return false
	}
	if dfs(c) {
		return errors.New(errors.ErrCodeReferenceCycle, "reference cycle through %v", cycle)
	}
	return nil
}

// TopologicalOrder returns every distinct component of the hierarchy with
// children before their parents, c last.
func TopologicalOrder(c *component.Component) ([]*component.Component, error) {
	if err := CheckAcyclic(c); err != nil {
		return nil, err
	}
	seen := make(map[*component.Component]bool)
	var out []*component.Component
	var visit func(n *component.Component)
	visit = func(n *component.Component) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, ch := range n.Children() {
			visit(ch)
		}
		out = append(out, n)
	}
	visit(c)
	return out, nil
}

// Summary is a one-line description used by the CLI.
func (n *Netlist) Summary() string {
	return fmt.Sprintf("%d instances, %d connections, %d exposed, %d open",
		len(n.Instances), len(n.Connections), len(n.Ports), len(n.Open))
}

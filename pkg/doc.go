// Package pkg provides the libraries of photonkit, a layout kernel for
// photonic and electronic integrated circuits.
//
// # Overview
//
// A layout is a hierarchy of immutable components. Each component owns
// polygons on layers, ports, and references to child components placed
// with a rigid transform. The packages are organized in three groups:
//
//  1. Geometry kernel: [geom], [layer], [port], [xsection], [path],
//     [extrude], [component], [connect], [placement]
//  2. Catalog and caching: [cache], [cells], [pdk]
//  3. Outputs and tooling: [export], [netlist], [difftest], [store],
//     [observability], [errors], [buildinfo]
//
// # Data Flow
//
//	PDK (layers, cross-sections)
//	         ↓
//	    [path] centerline + [xsection] profile
//	         ↓
//	    [extrude] → [component] with ports
//	         ↓
//	    [connect]/[placement] → hierarchy of references
//	         ↓
//	    [export] JSON · [netlist] · [difftest] digests
//
// # Quick Start
//
//	lib := cells.NewLibrary(cache.New(), nil)
//	bend, err := lib.Bend(cells.BendConfig{Family: cells.BendEuler, Radius: 10})
//	if err != nil {
//	    return err
//	}
//	s, _ := lib.Straight(cells.StraightConfig{Length: 20})
//
//	b := component.NewBuilder("bend_then_straight")
//	ref, _ := b.AddRef(bend, geom.Identity)
//	end, _ := ref.Port("o2")
//	_, err = placement.Place(b, "s1", s, "o1", end)
//
// # Errors
//
// All packages report failures as *errors.Error values carrying a Code
// (GEOMETRY, PORT_MISMATCH, CACHE_COLLISION, ...). Use errors.Is with a code
// to branch on the kind.
package pkg

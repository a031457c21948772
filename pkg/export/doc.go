// Package export writes flattened layouts as JSON and reads them back.
//
// # Overview
//
// The JSON form is the module's interchange format for tools that only need
// final geometry: viewers, DRC scripts and the regression references kept
// by pkg/difftest. The reference hierarchy is resolved, so every polygon is
// in absolute coordinates.
//
// # JSON Format
//
//	{
//	  "name": "straight_length10",
//	  "bbox": {"min": {"x": 0, "y": -0.25}, "max": {"x": 10, "y": 0.25}},
//	  "layers": [
//	    {
//	      "name": "WG",
//	      "layer": {"number": 1, "datatype": 0},
//	      "polygons": [[{"x": 0, "y": -0.25}, ...]]
//	    }
//	  ],
//	  "ports": [
//	    {"name": "o1", "center": {"x": 0, "y": 0}, "orientation": 180,
//	     "width": 0.5, "layer": {"number": 1, "datatype": 0}, "port_type": "optical"}
//	  ],
//	  "info": {"length": 10}
//	}
//
// Layers are sorted by number then datatype and named through a
// [layer.Registry]; unnamed layers use their "n/d" form. Polygons are
// counter-clockwise. Only the top-level ports are written.
//
// # Round Trip
//
// [ReadJSON] decodes the same format, and [Layout.Component] rebuilds a
// flat component from it, so a written layout re-imports with identical
// geometry hashes.
package export

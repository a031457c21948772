package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/geom"
	"github.com/matzehuels/photonkit/pkg/layer"
	"github.com/matzehuels/photonkit/pkg/port"
)

// Layout is the decoded JSON form of a flattened component.
type Layout struct {
	Name   string         `json:"name"`
	BBox   *geom.Rect     `json:"bbox,omitempty"`
	Layers []LayerData    `json:"layers"`
	Ports  []port.Port    `json:"ports"`
	Info   map[string]any `json:"info,omitempty"`
}

// LayerData holds the polygons of one layer.
type LayerData struct {
	Name     string         `json:"name"`
	Layer    layer.Layer    `json:"layer"`
	Polygons []geom.Polygon `json:"polygons"`
}

// FromComponent flattens c into a Layout. A nil registry names layers
// through the default layer map.
func FromComponent(c *component.Component, reg *layer.Registry) *Layout {
	if reg == nil {
		reg = layer.Default()
	}
	f := c.Flatten()
	out := &Layout{
		Name:   c.Name(),
		Layers: make([]LayerData, 0, len(f.Layers)),
		Ports:  c.Ports(),
		Info:   c.Info(),
	}
	if !c.IsEmpty() {
		bbox := c.BBox()
		out.BBox = &bbox
	}
	for _, l := range f.Layers {
		out.Layers = append(out.Layers, LayerData{
			Name:     reg.Name(l),
			Layer:    l,
			Polygons: f.Polygons[l],
		})
	}
	if len(out.Info) == 0 {
		out.Info = nil
	}
	return out
}

// WriteJSON flattens c and writes it to w as indented JSON.
func WriteJSON(c *component.Component, reg *layer.Registry, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromComponent(c, reg)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes c to a JSON file at path.
func ExportJSON(c *component.Component, reg *layer.Registry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(c, reg, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

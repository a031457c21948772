package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/photonkit/pkg/component"
	"github.com/matzehuels/photonkit/pkg/errors"
)

// ReadJSON decodes a layout written by [WriteJSON]. It does not close r.
func ReadJSON(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "decode layout")
	}
	for _, ld := range l.Layers {
		for i, pg := range ld.Polygons {
			if len(pg) < 3 {
				return nil, errors.New(errors.ErrCodeGeometry,
					"layer %s polygon %d has %d vertices", ld.Name, i, len(pg))
			}
		}
	}
	return &l, nil
}

// ImportJSON reads the layout file at path.
func ImportJSON(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	l, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Component rebuilds a flat, frozen component from the layout. An empty
// name keeps the layout's name.
func (l *Layout) Component(name string) (*component.Component, error) {
	if name == "" {
		name = l.Name
	}
	b := component.NewBuilder(name)
	for _, ld := range l.Layers {
		if err := b.AddPolygons(ld.Layer, ld.Polygons...); err != nil {
			return nil, err
		}
	}
	for _, p := range l.Ports {
		if err := b.AddPort(p); err != nil {
			return nil, fmt.Errorf("port %s: %w", p.Name, err)
		}
	}
	for k, v := range l.Info {
		if err := b.SetInfo(k, v); err != nil {
			return nil, err
		}
	}
	return b.Finalize()
}

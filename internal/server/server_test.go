package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/export"
	"github.com/matzehuels/photonkit/pkg/netlist"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := cells.NewRegistry(cells.NewLibrary(nil, nil), nil)
	ts := httptest.NewServer(New(reg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndLists(t *testing.T) {
	ts := newTestServer(t)

	if resp := get(t, ts, "/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}

	var names []string
	if err := json.NewDecoder(get(t, ts, "/factories").Body).Decode(&names); err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 || names[0] > names[len(names)-1] {
		t.Errorf("/factories = %v, want sorted names", names)
	}

	var layers []layerEntry
	if err := json.NewDecoder(get(t, ts, "/layers").Body).Decode(&layers); err != nil {
		t.Fatal(err)
	}
	if len(layers) == 0 || layers[0].Name != "WG" || layers[0].Number != 1 {
		t.Errorf("/layers first = %+v, want WG 1/0", layers)
	}
}

func TestBuildQuery(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/build/straight?length=25&cross_section=rib")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	l, err := export.ReadJSON(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Layers) != 2 {
		t.Errorf("layers = %d, want core and slab", len(l.Layers))
	}
	if l.BBox == nil || l.BBox.Max.X != 25 {
		t.Errorf("bbox = %v, want x up to 25", l.BBox)
	}
}

func TestBuildPost(t *testing.T) {
	ts := newTestServer(t)
	body := `{"component": "pad", "columns": 2, "add_ports": true}`
	resp, err := http.Post(ts.URL+"/build/array", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	l, err := export.ReadJSON(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Ports) != 10 {
		t.Errorf("ports = %d, want 10", len(l.Ports))
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		path   string
		status int
		code   errors.Code
	}{
		{"/build/spiral", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/build/straight?lenght=3", http.StatusBadRequest, errors.ErrCodeInvalidParameter},
		{"/build/straight?length=-3", http.StatusBadRequest, errors.ErrCodeInvalidParameter},
		{"/netlist/straight?format=png", http.StatusNotImplemented, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, ts, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestNetlist(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/netlist/delay_snake_sbend")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var n netlist.Netlist
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		t.Fatal(err)
	}
	if len(n.Ports) != 2 {
		t.Errorf("exposed ports = %v, want o1 and o2", n.Ports)
	}

	dot := get(t, ts, "/netlist/delay_snake_sbend?format=dot")
	if ct := dot.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("dot content type = %q", ct)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(""); got != http.StatusInternalServerError {
		t.Errorf("statusFor(\"\") = %d", got)
	}
	if got := statusFor(errors.ErrCodeGeometry); got != http.StatusUnprocessableEntity {
		t.Errorf("statusFor(GEOMETRY) = %d", got)
	}
}

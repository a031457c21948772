package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/photonkit/pkg/errors"
	"github.com/matzehuels/photonkit/pkg/export"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, want := range []string{"build", "list", "layers", "netlist", "difftest", "serve", "browse", "cache", "completion"} {
		if !have[want] {
			t.Errorf("root command has no %q subcommand", want)
		}
	}
}

func TestBuildCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "straight.json")
	out, err := run(t, "build", "straight", "--set", "length=25", "-o", path)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	for _, want := range []string{"Built", "o1", "o2", path} {
		if !strings.Contains(out, want) {
			t.Errorf("build output does not contain %q:\n%s", want, out)
		}
	}

	l, err := export.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if l.BBox == nil || l.BBox.Max.X != 25 {
		t.Errorf("exported bbox = %v, want max x 25", l.BBox)
	}
}

func TestBuildCommandJSON(t *testing.T) {
	out, err := run(t, "build", "pad", "--set", "layer=M1", "--json")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	l, err := export.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v\n%s", err, out)
	}
	if len(l.Layers) != 1 || l.Layers[0].Name != "M1" {
		t.Errorf("layers = %+v, want only M1", l.Layers)
	}
	if len(l.Ports) != 5 {
		t.Errorf("len(ports) = %d, want 5", len(l.Ports))
	}
}

func TestBuildCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown factory", []string{"build", "spiral"}, errors.ErrCodeNotFound},
		{"bad assignment", []string{"build", "straight", "--set", "length"}, errors.ErrCodeInvalidParameter},
		{"invalid value", []string{"build", "straight", "--set", "length=-1"}, errors.ErrCodeInvalidParameter},
		{"missing pdk", []string{"build", "straight", "--pdk", "/nonexistent/kit.toml"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("%v error = %v, want %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestListAndLayersCommands(t *testing.T) {
	out, err := run(t, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{"straight", "component_sequence", "strip", "rib", "default"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output does not contain %q", want)
		}
	}

	out, err = run(t, "layers")
	if err != nil {
		t.Fatalf("layers error: %v", err)
	}
	for _, want := range []string{"WG", "M1", "Number"} {
		if !strings.Contains(out, want) {
			t.Errorf("layers output does not contain %q", want)
		}
	}
}

func TestNetlistCommand(t *testing.T) {
	out, err := run(t, "netlist", "delay_snake_sbend", "--format", "dot")
	if err != nil {
		t.Fatalf("netlist error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("netlist dot output starts with %.20q, want digraph", out)
	}

	out, err = run(t, "netlist", "straight", "--format", "json")
	if err != nil {
		t.Fatalf("netlist error: %v", err)
	}
	if !strings.Contains(out, `"instances"`) {
		t.Errorf("netlist json output missing instances:\n%s", out)
	}

	_, err = run(t, "netlist", "straight", "--format", "gds")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("netlist --format gds error = %v, want UNSUPPORTED", err)
	}
}

func TestDifftestCommand(t *testing.T) {
	storeURL := "file://" + t.TempDir()

	out, err := run(t, "difftest", "straight", "pad", "--store", storeURL)
	if err != nil {
		t.Fatalf("first difftest error: %v", err)
	}
	if strings.Count(out, "recorded") != 2 {
		t.Errorf("first run should record two references:\n%s", out)
	}

	out, err = run(t, "difftest", "straight", "pad", "--store", storeURL)
	if err != nil {
		t.Fatalf("second difftest error: %v", err)
	}
	if strings.Count(out, "unchanged") != 2 {
		t.Errorf("second run should match both references:\n%s", out)
	}

	out, err = run(t, "difftest", "straight", "--store", storeURL, "--forget")
	if err != nil {
		t.Fatalf("forget error: %v", err)
	}
	if !strings.Contains(out, "Forgot") {
		t.Errorf("forget output:\n%s", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q, want it to end with %q", out, appName)
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	go func() { done <- c.serve(ctx, ln, h) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command name")
	}
}

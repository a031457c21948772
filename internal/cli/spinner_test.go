package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Building...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Building...") {
		t.Errorf("spinner output %q does not contain the message", buf.String())
	}
}

func TestSpinnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &syncBuffer{}, "Testing...")
	s.Start()

	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after its context is")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Testing...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Never started")
	s.Stop()
	if !s.Cancelled() {
		t.Error("Stop should cancel the spinner")
	}
}

func TestSpinnerStopWithResult(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("built %d cells", 3) }, iconSuccess + " built 3 cells"},
		{"error", func(s *Spinner) { s.StopWithError("failed") }, iconError + " failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			s := newSpinner(context.Background(), &buf, "Working...")
			s.Start()
			tt.stop(s)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

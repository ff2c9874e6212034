package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerAnimatesMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Rendering forecast.json...")
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering forecast.json...") {
		t.Errorf("output = %q, want the message", out)
	}
	if !strings.Contains(out, s.frames[0]) || !strings.Contains(out, s.frames[1]) {
		t.Errorf("output = %q, want at least two frames", out)
	}
	clear := "\r" + strings.Repeat(" ", len(s.message)+4) + "\r"
	if !strings.HasSuffix(out, clear) {
		t.Errorf("output should end by clearing the line: %q", out)
	}
	if !s.Cancelled() {
		t.Error("Stop should release the spinner context")
	}
}

func TestSpinnerOutcome(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("Rendered forecast.png") }, iconSuccess + " Rendered forecast.png\n"},
		{"error", func(s *Spinner) { s.StopWithError("Render failed: stage has no size") }, iconError + " Render failed: stage has no size\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newSpinner(&buf, "Rendering forecast.json...")
			s.Start()
			tt.stop(s)
			if !strings.HasSuffix(buf.String(), tt.want) {
				t.Errorf("output = %q, want suffix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, &buf, "Rendering forecast.json...")
	s.Start()

	cancel()
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after the parent context ended")
	}
	// A later Stop from the render path must not block or panic.
	s.Stop()
	s.Stop()
	if strings.Contains(buf.String(), iconSuccess) {
		t.Errorf("cancelled spinner printed success: %q", buf.String())
	}
}

func TestRenderSpinnerOutput(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeProject(t, "forecast.json", forecast())

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantOut    string
		wantStderr string
	}{
		{"success", []string{"render", path}, false, iconSuccess + " Rendered 4 elements", ""},
		{"bad fill", []string{"render", path, "--fill", "white"}, true, "", iconError + " Render failed: invalid color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := env.runWithLogs(t, &bytes.Buffer{}, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout = %q, want %q", out, tt.wantOut)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantStderr)
			}
			if !tt.wantErr && strings.Contains(stderr, iconError) {
				t.Errorf("successful render reported an error: %q", stderr)
			}
		})
	}
}

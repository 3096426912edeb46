package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFFProbeProberParsesDuration(t *testing.T) {
	prober := NewFFProbeProber("ffprobe", time.Second)
	prober.Run = func(_ context.Context, binary string, args ...string) ([]byte, error) {
		if binary != "ffprobe" {
			t.Fatalf("unexpected binary %q", binary)
		}
		if args[len(args)-1] != "/tmp/clip.mp4" {
			t.Fatalf("expected file path as final argument, got %v", args)
		}
		return []byte(`{"format": {"duration": "12.540000", "format_name": "mov,mp4"}}`), nil
	}

	duration, err := prober.Probe(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if duration != 12.54 {
		t.Fatalf("expected 12.54 seconds, got %v", duration)
	}
}

func TestFFProbeProberRejectsMissingDuration(t *testing.T) {
	prober := NewFFProbeProber("ffprobe", time.Second)
	prober.Run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(`{"format": {}}`), nil
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); err == nil {
		t.Fatal("expected missing duration to be rejected")
	}
}

func TestFFProbeProberRejectsInvalidJSON(t *testing.T) {
	prober := NewFFProbeProber("ffprobe", time.Second)
	prober.Run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("not json"), nil
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); err == nil {
		t.Fatal("expected invalid JSON to be rejected")
	}
}

func TestFFProbeProberPropagatesCommandErrors(t *testing.T) {
	wantErr := errors.New("exit status 1")

	prober := NewFFProbeProber("ffprobe", time.Second)
	prober.Run = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, wantErr
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); !errors.Is(err, wantErr) {
		t.Fatalf("expected command error to propagate, got %v", err)
	}
}

func TestFFProbeProberAppliesTimeout(t *testing.T) {
	prober := NewFFProbeProber("ffprobe", 10*time.Millisecond)
	prober.Run = func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []byte(`{"format": {"duration": "1"}}`), nil
		}
	}

	if _, err := prober.Probe(context.Background(), "/tmp/clip.mp4"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNopDisabled(t *testing.T) {
	l := Nop()
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), lvl) {
			t.Errorf("Nop().Enabled(%v) = true, want false", lvl)
		}
	}
	// Derived loggers stay silent.
	if l.With("k", "v").WithGroup("g").Enabled(context.Background(), slog.LevelError) {
		t.Error("derived nop logger is enabled")
	}
}

func TestOr(t *testing.T) {
	if Or(nil) == nil {
		t.Fatal("Or(nil) returned nil")
	}

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	if got := Or(custom); got != custom {
		t.Errorf("Or(custom) = %p, want %p", got, custom)
	}
	Or(custom).Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("custom logger output = %q, want it to contain hello", buf.String())
	}
}

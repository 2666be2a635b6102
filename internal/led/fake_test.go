package led

import (
	"errors"
	"testing"
)

func TestFakeDriverRecordsFrames(t *testing.T) {
	f := NewFakeDriver()

	if f.Last() != (Frame{}) {
		t.Error("Last() should be the zero frame before any write")
	}

	frames := []Frame{
		{{255, 176, 0}, {255, 176, 0}, {255, 176, 0}},
		{{16, 16, 255}, {16, 16, 255}, {16, 16, 255}},
	}
	for _, frame := range frames {
		if err := f.WriteFrame(frame); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(f.Frames) != 2 {
		t.Fatalf("recorded %d frames, want 2", len(f.Frames))
	}
	if f.Last() != frames[1] {
		t.Errorf("Last() = %+v, want %+v", f.Last(), frames[1])
	}
}

func TestFakeDriverWriteError(t *testing.T) {
	f := NewFakeDriver()
	f.WriteError = errors.New("simulated error")

	if err := f.WriteFrame(Frame{}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Frames) != 0 {
		t.Error("failed write should not record a frame")
	}
}

func TestFakeDriverCloseAndReset(t *testing.T) {
	f := NewFakeDriver()
	f.WriteFrame(Frame{})

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || len(f.Frames) != 0 {
		t.Error("Reset should clear state")
	}
}

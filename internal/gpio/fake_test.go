package gpio

import (
	"errors"
	"testing"
)

func TestFakeLEDSet(t *testing.T) {
	f := NewFakeLED()

	if f.On() {
		t.Error("should start off")
	}

	for _, on := range []bool{true, false, true} {
		if err := f.Set(on); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.On() != on {
			t.Errorf("On() = %v, want %v", f.On(), on)
		}
	}

	if len(f.States) != 3 {
		t.Errorf("recorded %d states, want 3", len(f.States))
	}
}

func TestFakeLEDSetError(t *testing.T) {
	f := NewFakeLED()
	f.SetError = errors.New("simulated error")

	if err := f.Set(true); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.States) != 0 {
		t.Error("failed Set should not record state")
	}
}

func TestFakeLEDCloseAndReset(t *testing.T) {
	f := NewFakeLED()
	f.Set(true)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || len(f.States) != 0 {
		t.Error("Reset should clear state")
	}
}

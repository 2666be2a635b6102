// Package led provides RGB LED output with hardware abstraction.
// The real implementation speaks Open Pixel Control to a fadecandy-style
// server. The fake implementation records frames for testing.
package led

// The badge carries exactly three RGB LEDs.
const NumLeds = 3

// LED positions within a Frame, matching the physical badge layout.
const (
	LeftEye  = 0
	RightEye = 1
	Heart    = 2
)

// RGB is one LED's color, 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

// Frame is one complete set of LED outputs for a single scheduler tick.
// It has no identity beyond the current tick; it is rebuilt from scratch
// every frame and never diffed or stored.
type Frame [NumLeds]RGB

// Driver writes frames to the physical LEDs.
type Driver interface {
	// WriteFrame sends one frame to the LEDs. Errors are transient: the
	// caller skips the visual update and keeps ticking.
	WriteFrame(Frame) error

	// Close releases driver resources.
	Close() error
}

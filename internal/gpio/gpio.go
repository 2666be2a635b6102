// Package gpio drives the badge's single onboard activity LED.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// ActivityLED sets the onboard indicator LED. The scheduler loop toggles it
// on every sensor sample and holds it solid while the sensor-fault fallback
// is engaged, so a glance at the board shows whether the loop is alive.
type ActivityLED interface {
	// Set drives the LED on or off.
	Set(on bool) error

	// Close turns the LED off and releases GPIO resources.
	Close() error
}

// DefaultPinLED is the activity LED line (BCM numbering). Pin 25 matches the
// original badge board's onboard LED.
const DefaultPinLED = 25

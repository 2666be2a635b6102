// Package sensor provides calibrated temperature reading with hardware
// abstraction. The real implementation reads the kernel thermal sysfs
// interface. The fake implementation allows testing without hardware.
package sensor

import (
	"errors"

	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
)

// ErrTimeout is returned when a read does not complete within the bounded
// read timeout. The scheduler loop must never stall on a stuck sensor.
var ErrTimeout = errors.New("sensor: read timeout")

// Reader reads the badge temperature.
type Reader interface {
	// Read returns a calibrated temperature in tenths of a degree Celsius.
	// Errors are transient: the caller reuses its last good reading.
	Read() (logic.DeciCelsius, error)

	// Close releases sensor resources.
	Close() error
}

// DefaultDevicePath is the default thermal sysfs file, in millidegrees
// Celsius (thermal_zone0 is the SoC sensor on the Pi, the closest analog of
// the badge's on-die sensor).
const DefaultDevicePath = "/sys/class/thermal/thermal_zone0/temp"

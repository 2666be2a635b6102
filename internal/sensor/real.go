//go:build linux

package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
)

// RealReader reads temperature from the kernel thermal sysfs interface.
type RealReader struct {
	path    string
	timeout time.Duration
}

// NewRealReader creates a sensor reader for the given sysfs file. Readings
// that take longer than timeout are abandoned and reported as ErrTimeout.
func NewRealReader(path string, timeout time.Duration) (*RealReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sensor device %s: %w", path, err)
	}
	return &RealReader{path: path, timeout: timeout}, nil
}

type readResult struct {
	temp logic.DeciCelsius
	err  error
}

// Read returns the temperature in tenths of a degree Celsius.
// The sysfs read runs in a goroutine so a wedged kernel driver can only cost
// the loop the configured timeout, never a whole frame deadline overrun that
// freezes the animation.
func (r *RealReader) Read() (logic.DeciCelsius, error) {
	done := make(chan readResult, 1)
	go func() {
		done <- readFile(r.path)
	}()

	select {
	case res := <-done:
		return res.temp, res.err
	case <-time.After(r.timeout):
		return 0, ErrTimeout
	}
}

func readFile(path string) readResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return readResult{0, fmt.Errorf("read %s: %w", path, err)}
	}

	// Thermal sysfs reports millidegrees, e.g. "48312\n".
	milli, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 32)
	if err != nil {
		return readResult{0, fmt.Errorf("parse %s: %w", path, err)}
	}

	return readResult{logic.DeciCelsius(milli / 100), nil}
}

// Close releases sensor resources. The sysfs reader holds no descriptors
// between reads.
func (r *RealReader) Close() error {
	return nil
}

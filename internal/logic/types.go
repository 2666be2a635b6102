// Package logic contains pure business logic for the badge's impression
// tracking. This package has NO external dependencies (no sensor, LED, MQTT,
// OS, or time.Sleep). Time is always injectable via time.Time parameters.
package logic

import "time"

// DeciCelsius is a temperature in tenths of a degree Celsius.
// 231 means 23.1°C. Signed: the badge may well be worn outdoors in winter.
type DeciCelsius int32

// Celsius returns the temperature as a float, for display and payloads.
func (d DeciCelsius) Celsius() float64 {
	return float64(d) / 10
}

// Impression is the badge's discrete thermal state.
type Impression string

const (
	ImpressionWarm Impression = "WARM"
	ImpressionCold Impression = "COLD"
)

// Thresholds holds the hysteresis dead band for impression changes.
// ColdExit must be greater than ColdEnter; readings between the two never
// change the impression.
type Thresholds struct {
	// Transition to COLD only at or below this reading.
	ColdEnter DeciCelsius
	// Transition back to WARM only at or above this reading.
	ColdExit DeciCelsius
}

// EventType represents an impression transition event.
type EventType string

const (
	EventCold EventType = "COLD"
	EventWarm EventType = "WARM"
	// EventFallback is emitted when consecutive sensor faults force the
	// impression to the safe WARM fallback.
	EventFallback EventType = "FAULT_FALLBACK"
)

// Event represents an impression change to be published.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	Impression Impression
	// Temp is the reading that triggered the change. For EventFallback it is
	// the last good reading (zero if none was ever taken).
	Temp DeciCelsius
}

// Input represents a single sensor sample.
type Input struct {
	Temp DeciCelsius
	Time time.Time
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Cold      int
	Warm      int
	Faults    int // individual failed sensor reads
	Fallbacks int // times the fault threshold forced WARM
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp  time.Time
	Uptime     time.Duration
	Impression Impression
	Temp       DeciCelsius
	Counts     EventCounts
}

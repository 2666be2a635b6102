// Package status provides a thread-safe status tracker for the badge daemon.
// It is read by HTTP handlers while the scheduler loop writes it every tick.
package status

import (
	"sync"
	"time"

	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	SampleMs    int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	OPCServer   string
	SensorPath  string
	FaultLimit  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Impression    logic.Impression
	Temp          logic.DeciCelsius
	HaveTemp      bool
	InFallback    bool
	Faults        int
	Counts        logic.EventCounts
	FramesWritten uint64
	DriverErrors  uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the impression, last reading, and fault/event counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(imp logic.Impression, temp logic.DeciCelsius, haveTemp, inFallback bool, faults int, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Impression = imp
	t.snap.Temp = temp
	t.snap.HaveTemp = haveTemp
	t.snap.InFallback = inFallback
	t.snap.Faults = faults
	t.snap.Counts = counts
	t.mu.Unlock()
}

// CountFrame increments the emitted-frame counter, or the driver error
// counter when the frame could not be written.
func (t *Tracker) CountFrame(err error) {
	t.mu.Lock()
	if err != nil {
		t.snap.DriverErrors++
	} else {
		t.snap.FramesWritten++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

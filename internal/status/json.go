package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Impression    string     `json:"impression"`
	TemperatureC  *float64   `json:"temperature_c,omitempty"`
	Fallback      bool       `json:"fault_fallback"`
	Faults        int        `json:"consecutive_faults"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Frames        FrameJSON  `json:"frames"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Cold      int `json:"cold"`
	Warm      int `json:"warm"`
	Faults    int `json:"sensor_faults"`
	Fallbacks int `json:"fault_fallbacks"`
}

// FrameJSON is the JSON representation of LED output counters.
type FrameJSON struct {
	Written      uint64 `json:"written"`
	DriverErrors uint64 `json:"driver_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	SampleMs    int64  `json:"sample_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	OPCServer   string `json:"opc_server"`
	SensorPath  string `json:"sensor_path"`
	FaultLimit  int    `json:"fault_limit"`
}

func buildInner(snap Snapshot) StatusInner {
	imp := string(snap.Impression)
	if imp == "" {
		imp = "UNKNOWN"
	}

	inner := StatusInner{
		Impression:    imp,
		Fallback:      snap.InFallback,
		Faults:        snap.Faults,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Cold:      snap.Counts.Cold,
			Warm:      snap.Counts.Warm,
			Faults:    snap.Counts.Faults,
			Fallbacks: snap.Counts.Fallbacks,
		},
		Frames: FrameJSON{
			Written:      snap.FramesWritten,
			DriverErrors: snap.DriverErrors,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			SampleMs:    snap.Config.SampleMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			OPCServer:   snap.Config.OPCServer,
			SensorPath:  snap.Config.SensorPath,
			FaultLimit:  snap.Config.FaultLimit,
		},
	}

	if snap.HaveTemp {
		c := snap.Temp.Celsius()
		inner.TemperatureC = &c
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

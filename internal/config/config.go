// Package config loads the badge tuning file. Every aesthetic and behavioral
// constant (thresholds, pulse timing, colors, cadences) lives here as a named
// setting with a default, so retuning the badge never means recompiling it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"

	"github.com/tomikoski/Alpakkabadge2024/internal/animation"
	"github.com/tomikoski/Alpakkabadge2024/internal/gpio"
	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
	"github.com/tomikoski/Alpakkabadge2024/internal/sensor"
)

// Duration wraps time.Duration so the YAML file can say "1200ms" or "4.2s".
type Duration time.Duration

// MarshalJSON renders the duration in Go's string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a Go duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the badge tuning file.
type Config struct {
	// Tick is the frame interval of the scheduler loop.
	Tick Duration `json:"tick"`
	// Sample is the sensor polling cadence (a multiple of Tick in practice;
	// the sensor is slower and noisier than the animation needs).
	Sample Duration `json:"sample"`
	// Heartbeat is the MQTT telemetry interval, 0 to disable.
	Heartbeat Duration `json:"heartbeat"`

	// SensorPath is the thermal sysfs file with millidegree readings.
	SensorPath string `json:"sensorPath"`
	// SensorTimeout bounds a single sensor read.
	SensorTimeout Duration `json:"sensorTimeout"`
	// FaultLimit is the number of consecutive sensor faults that forces the
	// WARM fallback impression.
	FaultLimit int `json:"faultLimit"`

	// ColdEnterC / ColdExitC are the hysteresis thresholds in °C.
	ColdEnterC float64 `json:"coldEnterC"`
	ColdExitC  float64 `json:"coldExitC"`

	// Broker is the MQTT broker address, "" to run without telemetry.
	Broker string `json:"broker"`
	// HTTPAddr is the status server bind address, "" to disable.
	HTTPAddr string `json:"http"`
	// OPCServer is the fadecandy server for LED output.
	OPCServer string `json:"opcServer"`
	// OPCChannel is the OPC channel carrying the badge's three LEDs.
	OPCChannel uint8 `json:"opcChannel"`
	// LedPin is the activity LED GPIO line, -1 to disable.
	LedPin int `json:"ledPin"`

	// Animation holds the render tuning.
	Animation Animation `json:"animation"`
}

// Animation mirrors animation.Config with YAML-friendly durations.
type Animation struct {
	WarmColor      string   `json:"warmColor"`
	ColdColor      string   `json:"coldColor"`
	PulsePeriod    Duration `json:"pulsePeriod"`
	PulseDecay     Duration `json:"pulseDecay"`
	PulseEchoDelay Duration `json:"pulseEchoDelay"`
	PulseEchoLevel float64  `json:"pulseEchoLevel"`
	PulseFloor     float64  `json:"pulseFloor"`
	BlinkPeriod    Duration `json:"blinkPeriod"`
	BlinkShutAfter Duration `json:"blinkShutAfter"`
	BlinkShutFor   Duration `json:"blinkShutFor"`
	BlinkRamp      Duration `json:"blinkRamp"`
	ShutLed        int      `json:"shutLed"`
}

// Default returns the stock tuning. 23°C as the cold threshold is the
// original badge's constant; the 2°C dead band keeps the impression from
// flickering on a draft.
func Default() Config {
	anim := animation.DefaultConfig()
	return Config{
		Tick:          Duration(50 * time.Millisecond),
		Sample:        Duration(500 * time.Millisecond),
		Heartbeat:     Duration(15 * time.Minute),
		SensorPath:    sensor.DefaultDevicePath,
		SensorTimeout: Duration(20 * time.Millisecond),
		FaultLimit:    3,
		ColdEnterC:    23.0,
		ColdExitC:     25.0,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPAddr:      ":8080",
		OPCServer:     "localhost:7890",
		OPCChannel:    0,
		LedPin:        gpio.DefaultPinLED,
		Animation: Animation{
			WarmColor:      anim.WarmColor,
			ColdColor:      anim.ColdColor,
			PulsePeriod:    Duration(anim.PulsePeriod),
			PulseDecay:     Duration(anim.PulseDecay),
			PulseEchoDelay: Duration(anim.PulseEchoDelay),
			PulseEchoLevel: anim.PulseEchoLevel,
			PulseFloor:     anim.PulseFloor,
			BlinkPeriod:    Duration(anim.BlinkPeriod),
			BlinkShutAfter: Duration(anim.BlinkShutAfter),
			BlinkShutFor:   Duration(anim.BlinkShutFor),
			BlinkRamp:      Duration(anim.BlinkRamp),
			ShutLed:        anim.ShutLed,
		},
	}
}

// Load reads the tuning file at path, layered over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints the type system can't.
func (c Config) Validate() error {
	if c.Tick.Std() <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick.Std())
	}
	if c.Sample.Std() < c.Tick.Std() {
		return fmt.Errorf("sample cadence %v shorter than tick %v", c.Sample.Std(), c.Tick.Std())
	}
	if c.SensorTimeout.Std() <= 0 {
		return fmt.Errorf("sensor timeout must be positive, got %v", c.SensorTimeout.Std())
	}
	if c.FaultLimit < 1 {
		return fmt.Errorf("fault limit must be at least 1, got %d", c.FaultLimit)
	}
	if c.ColdExitC <= c.ColdEnterC {
		return fmt.Errorf("coldExitC (%.1f) must exceed coldEnterC (%.1f) for hysteresis", c.ColdExitC, c.ColdEnterC)
	}
	if c.OPCServer == "" {
		return fmt.Errorf("opcServer must be set")
	}
	if _, err := animation.NewEngine(c.AnimationConfig()); err != nil {
		return fmt.Errorf("animation: %w", err)
	}
	return nil
}

// Thresholds converts the °C thresholds to the classifier's fixed point.
func (c Config) Thresholds() logic.Thresholds {
	return logic.Thresholds{
		ColdEnter: logic.DeciCelsius(c.ColdEnterC * 10),
		ColdExit:  logic.DeciCelsius(c.ColdExitC * 10),
	}
}

// AnimationConfig converts the YAML shape into the engine's config.
func (c Config) AnimationConfig() animation.Config {
	return animation.Config{
		WarmColor:      c.Animation.WarmColor,
		ColdColor:      c.Animation.ColdColor,
		PulsePeriod:    c.Animation.PulsePeriod.Std(),
		PulseDecay:     c.Animation.PulseDecay.Std(),
		PulseEchoDelay: c.Animation.PulseEchoDelay.Std(),
		PulseEchoLevel: c.Animation.PulseEchoLevel,
		PulseFloor:     c.Animation.PulseFloor,
		BlinkPeriod:    c.Animation.BlinkPeriod.Std(),
		BlinkShutAfter: c.Animation.BlinkShutAfter.Std(),
		BlinkShutFor:   c.Animation.BlinkShutFor.Std(),
		BlinkRamp:      c.Animation.BlinkRamp.Std(),
		ShutLed:        c.Animation.ShutLed,
	}
}

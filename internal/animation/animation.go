// Package animation computes per-LED colors from the badge impression and
// elapsed time. Rendering is a pure function of (Impression, Phase): no
// hidden state, so every frame is deterministic and replayable off hardware.
package animation

import (
	"fmt"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/tomikoski/Alpakkabadge2024/internal/led"
	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
)

// Phase is milliseconds since boot. It wraps after ~49.7 days; all waveform
// positions are computed modulo their period in uint32 arithmetic, so a wrap
// costs at most one visible beat glitch and never breaks rendering.
type Phase uint32

// Advance returns the phase moved forward by elapsed wall time.
func (p Phase) Advance(elapsed time.Duration) Phase {
	return p + Phase(elapsed.Milliseconds())
}

// Config holds the animation tuning constants. These are aesthetic knobs:
// the defaults were picked by eye to read as "slow blue pulse, one eye shut"
// on the physical badge.
type Config struct {
	// WarmColor is the steady glow shown in the WARM impression.
	WarmColor string `json:"warmColor"`
	// ColdColor is the base color of the COLD heartbeat.
	ColdColor string `json:"coldColor"`

	// PulsePeriod is the heartbeat period.
	PulsePeriod time.Duration `json:"pulsePeriod"`
	// PulseDecay is how long one beat takes to fade out.
	PulseDecay time.Duration `json:"pulseDecay"`
	// PulseEchoDelay places the secondary "dub" beat after the primary one.
	PulseEchoDelay time.Duration `json:"pulseEchoDelay"`
	// PulseEchoLevel scales the secondary beat relative to the primary.
	PulseEchoLevel float64 `json:"pulseEchoLevel"`
	// PulseFloor is the minimum brightness between beats.
	PulseFloor float64 `json:"pulseFloor"`

	// BlinkPeriod is the eye-shut cycle length. Deliberately not a multiple
	// of PulsePeriod so the wink drifts against the heartbeat and the motion
	// reads as organic rather than mechanical.
	BlinkPeriod time.Duration `json:"blinkPeriod"`
	// BlinkShutAfter is how far into the cycle the eye starts closing.
	// Must be positive: the eye is open at phase zero.
	BlinkShutAfter time.Duration `json:"blinkShutAfter"`
	// BlinkShutFor is how long the eye stays shut.
	BlinkShutFor time.Duration `json:"blinkShutFor"`
	// BlinkRamp is the close/reopen easing time on each edge.
	BlinkRamp time.Duration `json:"blinkRamp"`

	// ShutLed is the frame index of the winking eye.
	ShutLed int `json:"shutLed"`
}

// DefaultConfig returns the stock badge tuning.
func DefaultConfig() Config {
	return Config{
		WarmColor:      "#ffb000",
		ColdColor:      "#1010ff",
		PulsePeriod:    1200 * time.Millisecond,
		PulseDecay:     420 * time.Millisecond,
		PulseEchoDelay: 360 * time.Millisecond,
		PulseEchoLevel: 0.6,
		PulseFloor:     0.08,
		BlinkPeriod:    4200 * time.Millisecond,
		BlinkShutAfter: 2600 * time.Millisecond,
		BlinkShutFor:   700 * time.Millisecond,
		BlinkRamp:      120 * time.Millisecond,
		ShutLed:        led.LeftEye,
	}
}

// Engine renders frames for the LED driver. Construct once, then call Render
// every tick; an Engine is immutable and allocation-free per frame.
type Engine struct {
	warm colorful.Color
	cold colorful.Color

	pulsePeriod uint32 // all waveform times in ms
	pulseDecay  uint32
	echoDelay   uint32
	echoLevel   float64
	floor       float64

	blinkPeriod uint32
	shutAfter   uint32
	shutFor     uint32
	ramp        uint32
	shutLed     int
}

// shutLevel is the "near zero" brightness of a closed eye. Fully off looks
// dead on the physical badge; a faint glimmer reads as an eyelid.
const shutLevel = 0.04

// NewEngine validates the config and builds a render engine.
func NewEngine(cfg Config) (*Engine, error) {
	warm, err := colorful.Hex(cfg.WarmColor)
	if err != nil {
		return nil, fmt.Errorf("warm color %q: %w", cfg.WarmColor, err)
	}
	cold, err := colorful.Hex(cfg.ColdColor)
	if err != nil {
		return nil, fmt.Errorf("cold color %q: %w", cfg.ColdColor, err)
	}

	if cfg.PulsePeriod <= 0 {
		return nil, fmt.Errorf("pulse period must be positive, got %v", cfg.PulsePeriod)
	}
	if cfg.PulseDecay <= 0 {
		return nil, fmt.Errorf("pulse decay must be positive, got %v", cfg.PulseDecay)
	}
	if cfg.PulseEchoDelay <= 0 || cfg.PulseEchoDelay >= cfg.PulsePeriod {
		return nil, fmt.Errorf("pulse echo delay must fall inside the pulse period, got %v", cfg.PulseEchoDelay)
	}
	if cfg.PulseFloor < 0 || cfg.PulseFloor >= 1 {
		return nil, fmt.Errorf("pulse floor must be in [0,1), got %v", cfg.PulseFloor)
	}
	if cfg.BlinkPeriod <= 0 {
		return nil, fmt.Errorf("blink period must be positive, got %v", cfg.BlinkPeriod)
	}
	if cfg.BlinkShutAfter <= 0 ||
		cfg.BlinkShutAfter+cfg.BlinkShutFor+cfg.BlinkRamp >= cfg.BlinkPeriod {
		return nil, fmt.Errorf("blink shut window must fall inside the blink period")
	}
	if cfg.ShutLed < 0 || cfg.ShutLed >= led.NumLeds {
		return nil, fmt.Errorf("shut led index %d out of range", cfg.ShutLed)
	}

	return &Engine{
		warm:        warm,
		cold:        cold,
		pulsePeriod: uint32(cfg.PulsePeriod.Milliseconds()),
		pulseDecay:  uint32(cfg.PulseDecay.Milliseconds()),
		echoDelay:   uint32(cfg.PulseEchoDelay.Milliseconds()),
		echoLevel:   cfg.PulseEchoLevel,
		floor:       cfg.PulseFloor,
		blinkPeriod: uint32(cfg.BlinkPeriod.Milliseconds()),
		shutAfter:   uint32(cfg.BlinkShutAfter.Milliseconds()),
		shutFor:     uint32(cfg.BlinkShutFor.Milliseconds()),
		ramp:        uint32(cfg.BlinkRamp.Milliseconds()),
		shutLed:     cfg.ShutLed,
	}, nil
}

// Render computes the frame for the given impression and phase.
func (e *Engine) Render(imp logic.Impression, phase Phase) led.Frame {
	var frame led.Frame

	if imp != logic.ImpressionCold {
		// WARM (and any unknown impression): steady glow, no time dependence.
		for i := range frame {
			frame[i] = scale(e.warm, 1.0)
		}
		return frame
	}

	pulse := e.pulseLevel(uint32(phase) % e.pulsePeriod)
	gate := e.blinkGate(uint32(phase) % e.blinkPeriod)

	for i := range frame {
		level := pulse
		if i == e.shutLed {
			level *= gate
		}
		frame[i] = scale(e.cold, level)
	}
	return frame
}

// pulseLevel computes heartbeat brightness at a position within the pulse
// period. A full-strength beat lands at position zero and a scaled echo beat
// PulseEchoDelay later, both decaying linearly over PulseDecay.
func (e *Engine) pulseLevel(pos uint32) float64 {
	primary := e.beat(pos)
	echo := e.echoLevel * e.beat((pos+e.pulsePeriod-e.echoDelay)%e.pulsePeriod)

	wave := primary
	if echo > wave {
		wave = echo
	}
	return e.floor + (1-e.floor)*clamp01(wave)
}

// beat is the shape of a single heartbeat: 1.0 at onset, linear decay to 0.
func (e *Engine) beat(sincePeak uint32) float64 {
	if sincePeak >= e.pulseDecay {
		return 0
	}
	return 1 - float64(sincePeak)/float64(e.pulseDecay)
}

// blinkGate computes the eye-shut multiplier at a position within the blink
// period: 1.0 open, shutLevel closed, with a linear ease on both edges.
func (e *Engine) blinkGate(pos uint32) float64 {
	closeStart := e.shutAfter
	closeEnd := closeStart + e.ramp
	openStart := closeStart + e.shutFor
	openEnd := openStart + e.ramp

	switch {
	case pos < closeStart || pos >= openEnd:
		return 1.0
	case pos < closeEnd:
		t := float64(pos-closeStart) / float64(e.ramp)
		return 1.0 + t*(shutLevel-1.0)
	case pos < openStart:
		return shutLevel
	default:
		t := float64(pos-openStart) / float64(e.ramp)
		return shutLevel + t*(1.0-shutLevel)
	}
}

func scale(c colorful.Color, level float64) led.RGB {
	level = clamp01(level)
	return led.RGB{
		R: channel(c.R * level),
		G: channel(c.G * level),
		B: channel(c.B * level),
	}
}

func channel(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tomikoski/Alpakkabadge2024/internal/animation"
	"github.com/tomikoski/Alpakkabadge2024/internal/led"
	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
	"github.com/tomikoski/Alpakkabadge2024/internal/mqtt"
	"github.com/tomikoski/Alpakkabadge2024/internal/sensor"
	"github.com/tomikoski/Alpakkabadge2024/internal/status"
)

var testThresholds = logic.Thresholds{ColdEnter: 230, ColdExit: 250}

// stepPipeline feeds one sensor reading through the classifier and publishes
// whatever events come out, then renders a frame at the given phase. It is
// the same sequence the scheduler runs every tick.
func stepPipeline(t *testing.T, reader *sensor.FakeReader, classifier *logic.Classifier, engine *animation.Engine, driver *led.FakeDriver, publisher *mqtt.FakePublisher, now time.Time, phase animation.Phase) {
	t.Helper()

	var events []logic.Event
	temp, err := reader.Read()
	if err != nil {
		events = classifier.ProcessFault(now)
	} else {
		events = classifier.Process(logic.Input{Temp: temp, Time: now})
	}

	for _, event := range events {
		if err := publisher.Publish(event); err != nil {
			t.Fatalf("publish error: %v", err)
		}
	}

	if err := driver.WriteFrame(engine.Render(classifier.Current(), phase)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

// coldFrame reports whether a frame is in the cold (blue) palette.
func coldFrame(f led.Frame) bool {
	return f[led.Heart].B > 0
}

// TestIntegrationFullFlow runs the whole pipeline — fake sensor, classifier,
// animation engine, fake LED driver, fake publisher — through a warm → cold
// → warm cycle.
func TestIntegrationFullFlow(t *testing.T) {
	samples := []sensor.Sample{
		{Temp: 262}, // t=0: warm
		{Temp: 258}, // t=500ms
		{Temp: 228}, // t=1s: crosses cold-enter → COLD
		{Temp: 215}, // t=1.5s
		{Temp: 241}, // t=2s: dead band, stays cold
		{Temp: 252}, // t=2.5s: crosses cold-exit → WARM
		{Temp: 260}, // t=3s
	}

	reader := sensor.NewFakeReader(samples)
	driver := led.NewFakeDriver()
	publisher := mqtt.NewFakePublisher()
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	classifier := logic.NewClassifier(testThresholds, 3, startTime)

	engine, err := animation.NewEngine(animation.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	sampleInterval := 500 * time.Millisecond
	var phase animation.Phase
	for i := range samples {
		now := startTime.Add(time.Duration(i) * sampleInterval)
		stepPipeline(t, reader, classifier, engine, driver, publisher, now, phase)
		phase = phase.Advance(sampleInterval)
	}

	if len(publisher.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(publisher.Events))
	}

	if publisher.Events[0].Type != logic.EventCold {
		t.Errorf("event 0: expected COLD, got %s", publisher.Events[0].Type)
	}
	if publisher.Events[0].Impression != logic.ImpressionCold {
		t.Errorf("event 0: expected impression COLD, got %s", publisher.Events[0].Impression)
	}
	if publisher.Events[0].Temp != 228 {
		t.Errorf("event 0: expected temp 228, got %d", publisher.Events[0].Temp)
	}

	if publisher.Events[1].Type != logic.EventWarm {
		t.Errorf("event 1: expected WARM, got %s", publisher.Events[1].Type)
	}
	if publisher.Events[1].Temp != 252 {
		t.Errorf("event 1: expected temp 252, got %d", publisher.Events[1].Temp)
	}

	// Frames must track the impression tick by tick.
	wantCold := []bool{false, false, true, true, true, false, false}
	for i, want := range wantCold {
		if got := coldFrame(driver.Frames[i]); got != want {
			t.Errorf("frame %d: cold=%v, want %v", i, got, want)
		}
	}

	// Verify JSON payloads parse and carry the core fields.
	for i, payload := range publisher.Payloads {
		var parsed mqtt.Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Errorf("payload %d: invalid JSON: %v", i, err)
		}
		if parsed.Badge.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		if parsed.Badge.Impression == "" {
			t.Errorf("payload %d: missing impression", i)
		}
	}
}

// TestIntegrationFaultFallbackFlow drives the pipeline cold, kills the
// sensor, and verifies the fallback kicks in after the fault limit and
// clears on the next good reading.
func TestIntegrationFaultFallbackFlow(t *testing.T) {
	fault := errors.New("read timeout")
	samples := []sensor.Sample{
		{Temp: 210}, // cold
		{Err: fault},
		{Err: fault},
		{Err: fault}, // third consecutive fault → fallback
		{Err: fault}, // no further fallback events
		{Temp: 212}, // recovery: good reading, below cold-enter → COLD again
	}

	reader := sensor.NewFakeReader(samples)
	driver := led.NewFakeDriver()
	publisher := mqtt.NewFakePublisher()
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	classifier := logic.NewClassifier(testThresholds, 3, startTime)

	engine, err := animation.NewEngine(animation.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	var phase animation.Phase
	for i := range samples {
		now := startTime.Add(time.Duration(i) * 500 * time.Millisecond)
		stepPipeline(t, reader, classifier, engine, driver, publisher, now, phase)
		phase = phase.Advance(500 * time.Millisecond)
	}

	wantTypes := []logic.EventType{logic.EventCold, logic.EventFallback, logic.EventCold}
	if len(publisher.Events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(publisher.Events))
	}
	for i, want := range wantTypes {
		if publisher.Events[i].Type != want {
			t.Errorf("event %d: expected %s, got %s", i, want, publisher.Events[i].Type)
		}
	}

	// The fallback event carries the last good reading, not zero.
	if publisher.Events[1].Temp != 210 {
		t.Errorf("fallback temp: got %d, want 210", publisher.Events[1].Temp)
	}

	// Frames: cold, cold, cold (faults below limit keep the impression),
	// then warm for the fallback, warm again, and cold on recovery.
	wantCold := []bool{true, true, true, false, false, true}
	for i, want := range wantCold {
		if got := coldFrame(driver.Frames[i]); got != want {
			t.Errorf("frame %d: cold=%v, want %v", i, got, want)
		}
	}

	if classifier.InFallback() {
		t.Errorf("fallback should clear after a good reading")
	}
}

// TestIntegrationPayloadFormat verifies the exact JSON structure.
func TestIntegrationPayloadFormat(t *testing.T) {
	event := logic.Event{
		Timestamp:  time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:       logic.EventCold,
		Impression: logic.ImpressionCold,
		Temp:       218,
	}

	publisher := mqtt.NewFakePublisher()
	publisher.Publish(event)

	expected := `{"badge":{"timestamp":"2026-02-02T22:18:12Z","event":"COLD","impression":"COLD","temperature_c":21.8}}`

	if string(publisher.Payloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(publisher.Payloads[0]), expected)
	}
}

// TestIntegrationStartupThenShutdown verifies the lifecycle event sequence
// with full status snapshots as retained payloads.
func TestIntegrationStartupThenShutdown(t *testing.T) {
	publisher := mqtt.NewFakePublisher()
	startTime := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(startTime, status.Config{
		TickMs:     50,
		Broker:     "tcp://broker:1883",
		FaultLimit: 3,
	})

	startup := mqtt.SystemEvent{
		Timestamp:  startTime,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		t.Fatalf("publish startup: %v", err)
	}

	tracker.Update(logic.ImpressionCold, 215, true, false, 0, logic.EventCounts{Cold: 1})

	shutdown := mqtt.SystemEvent{
		Timestamp:  startTime.Add(time.Hour),
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", "SIGTERM"),
	}
	if err := publisher.PublishSystem(shutdown); err != nil {
		t.Fatalf("publish shutdown: %v", err)
	}

	if len(publisher.SystemEvents) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(publisher.SystemEvents))
	}

	// The snapshot payload must pass through untouched.
	var parsed status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[1], &parsed); err != nil {
		t.Fatalf("shutdown payload: invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("payload event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("payload reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.Impression != "COLD" {
		t.Errorf("payload impression: got %q, want COLD", parsed.Status.Impression)
	}
	if parsed.Status.TemperatureC == nil || *parsed.Status.TemperatureC != 21.5 {
		t.Errorf("payload temperature: got %v, want 21.5", parsed.Status.TemperatureC)
	}
	if parsed.Status.Counts.Cold != 1 {
		t.Errorf("payload cold count: got %d, want 1", parsed.Status.Counts.Cold)
	}
}

// TestIntegrationPublishFailureDoesNotLoseState verifies the classifier
// keeps its state when publishing fails mid-stream.
func TestIntegrationPublishFailureDoesNotLoseState(t *testing.T) {
	reader := sensor.NewFakeReader([]sensor.Sample{
		{Temp: 260},
		{Temp: 215},
	})
	publisher := mqtt.NewFakePublisher()
	publisher.PublishError = errors.New("broker unreachable")
	startTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	classifier := logic.NewClassifier(testThresholds, 3, startTime)

	for i := 0; i < 2; i++ {
		temp, err := reader.Read()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		now := startTime.Add(time.Duration(i) * 500 * time.Millisecond)
		for _, event := range classifier.Process(logic.Input{Temp: temp, Time: now}) {
			// Errors are logged and dropped upstream; the loop keeps running.
			_ = publisher.Publish(event)
		}
	}

	if len(publisher.Events) != 0 {
		t.Errorf("expected no recorded events while publisher errors, got %d", len(publisher.Events))
	}
	if classifier.Current() != logic.ImpressionCold {
		t.Errorf("classifier state should survive publish failure, got %s", classifier.Current())
	}
}

// TestIntegrationAnimationPeriodAcrossSamples checks the cold animation is
// continuous across sample boundaries: the phase carries over, so rendering
// one pulse period apart yields identical heart output.
func TestIntegrationAnimationPeriodAcrossSamples(t *testing.T) {
	cfg := animation.DefaultConfig()
	engine, err := animation.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	var phase animation.Phase
	var frames []led.Frame
	step := 40 * time.Millisecond
	total := int(cfg.PulsePeriod/step) * 2
	for i := 0; i < total; i++ {
		frames = append(frames, engine.Render(logic.ImpressionCold, phase))
		phase = phase.Advance(step)
	}

	perPeriod := int(cfg.PulsePeriod / step)
	for i := 0; i < perPeriod; i++ {
		a := frames[i][led.Heart]
		b := frames[i+perPeriod][led.Heart]
		if a != b {
			t.Errorf("heart at step %d: %+v != %+v one pulse period later", i, a, b)
		}
	}
}

// Command alpakka-badge drives the badge: it samples the temperature sensor,
// classifies the badge's impression with hysteresis, and renders the LED
// animation, publishing impression changes to MQTT and serving a status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomikoski/Alpakkabadge2024/internal/animation"
	"github.com/tomikoski/Alpakkabadge2024/internal/config"
	"github.com/tomikoski/Alpakkabadge2024/internal/gpio"
	"github.com/tomikoski/Alpakkabadge2024/internal/led"
	"github.com/tomikoski/Alpakkabadge2024/internal/logic"
	"github.com/tomikoski/Alpakkabadge2024/internal/mqtt"
	"github.com/tomikoski/Alpakkabadge2024/internal/sensor"
	"github.com/tomikoski/Alpakkabadge2024/internal/status"
	"github.com/tomikoski/Alpakkabadge2024/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Tuning file (YAML); defaults apply when empty")
	broker := flag.String("broker", "", `MQTT broker address (overrides config; "off" disables)`)
	httpAddr := flag.String("http", "", `HTTP status address (overrides config; "off" disables)`)
	opcServer := flag.String("opc", "", "OPC/fadecandy server address (overrides config)")
	sensorPath := flag.String("sensor", "", "Thermal sysfs path (overrides config)")
	ledPin := flag.Int("led-pin", -2, "Activity LED BCM pin (overrides config; -1 disables)")
	printTemp := flag.Bool("print-temp", false, "Print current temperature and impression, then exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	// Flag overrides on top of the tuning file.
	if *broker == "off" {
		cfg.Broker = ""
	} else if *broker != "" {
		cfg.Broker = *broker
	}
	if *httpAddr == "off" {
		cfg.HTTPAddr = ""
	} else if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *opcServer != "" {
		cfg.OPCServer = *opcServer
	}
	if *sensorPath != "" {
		cfg.SensorPath = *sensorPath
	}
	if *ledPin != -2 {
		cfg.LedPin = *ledPin
	}

	if err := run(cfg, *printTemp); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printTemp bool) error {
	sensorReader, err := sensor.NewRealReader(cfg.SensorPath, cfg.SensorTimeout.Std())
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensorReader.Close()

	// Print temperature mode
	if printTemp {
		temp, err := sensorReader.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		imp := logic.Classify(temp, logic.ImpressionWarm, cfg.Thresholds())
		fmt.Printf("%.1f °C (%s)\n", temp.Celsius(), imp)
		return nil
	}

	engine, err := animation.NewEngine(cfg.AnimationConfig())
	if err != nil {
		return fmt.Errorf("init animation: %w", err)
	}

	driver, err := led.NewOPCDriver(cfg.OPCServer, cfg.OPCChannel)
	if err != nil {
		return fmt.Errorf("init led driver: %w", err)
	}
	defer driver.Close()

	// The activity LED is best-effort: the badge works without it.
	var activity gpio.ActivityLED
	if cfg.LedPin >= 0 {
		real, err := gpio.NewRealLED(cfg.LedPin)
		if err != nil {
			log.Printf("activity led disabled: %v", err)
		} else {
			activity = real
			defer real.Close()
		}
	}

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Std().Milliseconds(),
		SampleMs:    cfg.Sample.Std().Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Std().Milliseconds(),
		Broker:      cfg.Broker,
		HTTPPort:    cfg.HTTPAddr,
		OPCServer:   cfg.OPCServer,
		SensorPath:  cfg.SensorPath,
		FaultLimit:  cfg.FaultLimit,
	})

	// Publish startup event with full status snapshot
	if publisher != nil {
		startupEvent := mqtt.SystemEvent{
			Timestamp:  time.Now(),
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: tick=%v sample=%v thresholds=%.1f/%.1f°C opc=%s broker=%s",
		cfg.Tick.Std(), cfg.Sample.Std(), cfg.ColdEnterC, cfg.ColdExitC, cfg.OPCServer, cfg.Broker)

	ticker := time.NewTicker(cfg.Tick.Std())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sensorReader, driver, activity, publisher, mqttStatus, tracker, engine, cfg, time.Now, ticker.C, sigCh)
}

// runLoop is the scheduler: it owns all persistent state (classifier,
// animation phase, fault counters) and sequences sample -> classify ->
// render -> emit on every tick. No error is allowed to escape it; the loop
// is the top-level resilience boundary.
func runLoop(reader sensor.Reader, driver led.Driver, activity gpio.ActivityLED, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, engine *animation.Engine, cfg config.Config, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	classifier := logic.NewClassifier(cfg.Thresholds(), cfg.FaultLimit, startTime)

	var phase animation.Phase
	lastTick := startTime
	var lastSample time.Time // zero: sample on the first tick
	ledOn := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			// Blank the LEDs so the badge doesn't freeze mid-animation.
			if err := driver.WriteFrame(led.Frame{}); err != nil {
				log.Printf("failed to blank leds: %v", err)
			}
			return nil

		case <-tick:
			t := now()

			// Sample at the (slower) sensor cadence; the animation keeps
			// running on the last impression between samples.
			var events []logic.Event
			if lastSample.IsZero() || t.Sub(lastSample) >= cfg.Sample.Std() {
				lastSample = t

				temp, err := reader.Read()
				if err != nil {
					log.Printf("sensor read error: %v", err)
					events = classifier.ProcessFault(t)
				} else {
					events = classifier.Process(logic.Input{Temp: temp, Time: t})
				}

				// Activity LED: toggles per sample so a glance shows the
				// loop is alive; solid while the fault fallback is engaged.
				if activity != nil {
					if classifier.InFallback() {
						ledOn = true
					} else {
						ledOn = !ledOn
					}
					if err := activity.Set(ledOn); err != nil {
						log.Printf("activity led error: %v", err)
					}
				}
			}

			for _, event := range events {
				log.Printf("event: %s (impression=%s temp=%.1f°C)", event.Type, event.Impression, event.Temp.Celsius())
				if publisher != nil {
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			// Advance the animation by elapsed wall time, then render.
			phase = phase.Advance(t.Sub(lastTick))
			lastTick = t

			frame := engine.Render(classifier.Current(), phase)
			writeErr := driver.WriteFrame(frame)
			if writeErr != nil {
				// Skipping one visual update beats halting the loop.
				log.Printf("led write error: %v", writeErr)
			}
			if tracker != nil {
				tracker.CountFrame(writeErr)
			}

			// Check for heartbeat
			if hb := classifier.CheckHeartbeat(t, cfg.Heartbeat.Std()); hb != nil {
				log.Printf("heartbeat: uptime=%v impression=%s temp=%.1f°C cold=%d warm=%d faults=%d",
					hb.Uptime, hb.Impression, hb.Temp.Celsius(), hb.Counts.Cold, hb.Counts.Warm, hb.Counts.Faults)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					updateTracker(tracker, classifier)
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if publisher != nil {
					if err := publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				updateTracker(tracker, classifier)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func updateTracker(tracker *status.Tracker, classifier *logic.Classifier) {
	temp, haveTemp := classifier.LastGood()
	tracker.Update(classifier.Current(), temp, haveTemp, classifier.InFallback(),
		classifier.ConsecutiveFaults(), classifier.EventCountsSnapshot())
}

package logic

import "time"

// Classify applies the hysteresis rule to a single reading. It is a pure
// function of (reading, previous impression, thresholds):
//
//	WARM -> COLD only at or below ColdEnter
//	COLD -> WARM only at or above ColdExit
//	anything inside the dead band leaves the impression unchanged
func Classify(temp DeciCelsius, prev Impression, th Thresholds) Impression {
	switch prev {
	case ImpressionCold:
		if temp >= th.ColdExit {
			return ImpressionWarm
		}
		return ImpressionCold
	default:
		// WARM, or the zero value before the first reading.
		if temp <= th.ColdEnter {
			return ImpressionCold
		}
		return ImpressionWarm
	}
}

// Classifier owns the impression state machine plus the sensor-fault
// bookkeeping around it. The scheduler loop holds exactly one Classifier;
// everything else receives copies of the Impression value.
type Classifier struct {
	th         Thresholds
	faultLimit int

	current  Impression
	lastGood DeciCelsius
	haveGood bool

	// Consecutive failed reads. Reset by any successful read.
	faults   int
	fallback bool

	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewClassifier creates a Classifier starting in the WARM impression (the
// less attention-needing state). faultLimit is the number of consecutive
// sensor faults that forces the WARM fallback; the startTime is used for
// calculating uptime in heartbeat events.
func NewClassifier(th Thresholds, faultLimit int, startTime time.Time) *Classifier {
	return &Classifier{
		th:            th,
		faultLimit:    faultLimit,
		current:       ImpressionWarm,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a good sensor sample and returns any events that should be
// emitted. It clears fault state and re-applies the hysteresis rule.
func (c *Classifier) Process(input Input) []Event {
	c.faults = 0
	c.fallback = false
	c.lastGood = input.Temp
	c.haveGood = true

	next := Classify(input.Temp, c.current, c.th)
	if next == c.current {
		return nil
	}
	c.current = next

	ev := Event{
		Timestamp:  input.Time,
		Impression: next,
		Temp:       input.Temp,
	}
	if next == ImpressionCold {
		ev.Type = EventCold
		c.counts.Cold++
	} else {
		ev.Type = EventWarm
		c.counts.Warm++
	}
	return []Event{ev}
}

// ProcessFault records a failed sensor read. Once faultLimit consecutive
// faults accumulate the impression is forced to WARM regardless of the last
// good reading, and an EventFallback is emitted. Further faults are counted
// but emit nothing.
func (c *Classifier) ProcessFault(now time.Time) []Event {
	c.faults++
	c.counts.Faults++

	if c.fallback || c.faults < c.faultLimit {
		return nil
	}

	c.fallback = true
	c.counts.Fallbacks++
	c.current = ImpressionWarm

	return []Event{{
		Timestamp:  now,
		Type:       EventFallback,
		Impression: ImpressionWarm,
		Temp:       c.lastGood,
	}}
}

// Current returns the authoritative impression.
func (c *Classifier) Current() Impression {
	return c.current
}

// LastGood returns the most recent successful reading, and whether one has
// been taken since boot.
func (c *Classifier) LastGood() (DeciCelsius, bool) {
	return c.lastGood, c.haveGood
}

// ConsecutiveFaults returns the current run of failed reads.
func (c *Classifier) ConsecutiveFaults() int {
	return c.faults
}

// InFallback reports whether the fault threshold is currently forcing WARM.
func (c *Classifier) InFallback() bool {
	return c.fallback
}

// EventCountsSnapshot returns a copy of the event counters.
func (c *Classifier) EventCountsSnapshot() EventCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (c *Classifier) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp:  now,
		Uptime:     now.Sub(c.startTime),
		Impression: c.current,
		Temp:       c.lastGood,
		Counts:     c.counts,
	}
}

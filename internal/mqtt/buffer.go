package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayQueue holds messages that could not be delivered while the broker
// was unreachable. Bounded: once max is reached the oldest message is
// dropped, since a badge impression from minutes ago is worth less than the
// current one. Not safe for concurrent use — caller must synchronize.
type replayQueue struct {
	msgs    []queuedMsg
	max     int
	dropped int
}

func newReplayQueue(max int) *replayQueue {
	return &replayQueue{max: max}
}

// add appends a message, evicting the oldest when full.
func (q *replayQueue) add(m queuedMsg) {
	if len(q.msgs) == q.max {
		if q.dropped == 0 {
			log.Printf("mqtt: replay queue full (%d messages), dropping oldest", q.max)
		}
		q.dropped++
		copy(q.msgs, q.msgs[1:])
		q.msgs = q.msgs[:len(q.msgs)-1]
	}
	q.msgs = append(q.msgs, m)
}

// drain returns all queued messages oldest-first and empties the queue.
func (q *replayQueue) drain() []queuedMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	out := q.msgs
	q.msgs = nil
	q.dropped = 0
	return out
}

func (q *replayQueue) size() int {
	return len(q.msgs)
}

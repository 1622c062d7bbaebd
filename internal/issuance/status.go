package issuance

import (
	"sync"
	"time"

	"github.com/cellforge/cellforge/internal/lifecycle"
	"github.com/cellforge/cellforge/internal/log"
	"github.com/asaskevich/EventBus"
)

// TopicStatus is the bus topic status events are published on. Subscribers
// receive each Event in order; the stream is append-only and never
// replayed.
const TopicStatus = "issuance:status"

// Event is one entry of the status stream: a timestamped human-readable
// message plus the structured {step, state} signal for progress UI.
type Event struct {
	Time      time.Time      `json:"time"`
	SessionID string         `json:"session_id"`
	Step      lifecycle.Role `json:"step,omitempty"`
	State     State          `json:"state"`
	Message   string         `json:"message"`
}

// Stream is the session's ordered, append-only status log. The orchestrator
// is its only writer; readers take snapshots, so no reader ever observes a
// partially written event.
type Stream struct {
	mu     sync.Mutex
	events []Event
	bus    EventBus.Bus
}

// NewStream creates a status stream. bus may be nil when no UI collaborator
// is subscribed (tests, headless runs).
func NewStream(bus EventBus.Bus) *Stream {
	return &Stream{bus: bus}
}

func (st *Stream) emit(sessionID string, step lifecycle.Role, state State, message string) {
	ev := Event{
		Time:      time.Now().UTC(),
		SessionID: sessionID,
		Step:      step,
		State:     state,
		Message:   message,
	}

	st.mu.Lock()
	st.events = append(st.events, ev)
	st.mu.Unlock()

	log.Issuance.Info().
		Str("session_id", sessionID).
		Str("step", string(step)).
		Str("state", string(state)).
		Msg(message)

	if st.bus != nil {
		st.bus.Publish(TopicStatus, ev)
	}
}

// Events returns a snapshot of the stream so far.
func (st *Stream) Events() []Event {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Event, len(st.events))
	copy(out, st.events)
	return out
}

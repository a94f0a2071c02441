package mau

import (
	"sync"
	"time"
)

// EventKind labels a journal event.
type EventKind string

const (
	EventSessionStart EventKind = "SESSION_START"
	EventGameJoin     EventKind = "GAME_JOIN"
	EventGameLeave    EventKind = "GAME_LEAVE"
	EventGameStart    EventKind = "GAME_START"
	EventGameEnd      EventKind = "GAME_END"
	EventGameTurn     EventKind = "GAME_TURN"
	EventGameTake     EventKind = "GAME_TAKE"
	EventGameRotate   EventKind = "GAME_ROTATE"
	EventSelectColor  EventKind = "GAME_SELECT_COLOR"
	EventSelectPlayer EventKind = "GAME_SELECT_PLAYER"
	EventGameUno      EventKind = "GAME_UNO"
	EventGameBluff    EventKind = "GAME_BLUFF"
	EventGameState    EventKind = "GAME_STATE"
)

// Event is the envelope handed to the journal sink. PlayerID may be empty
// for game-wide events; Data carries a kind-specific string payload.
type Event struct {
	Kind     EventKind
	GameID   string
	PlayerID string
	Data     string
	Ts       int64
}

// Sink receives flushed journal events. The engine never inspects delivery:
// error handling and downstream ordering past the sink are the adapter's
// concern. Within one room, events arrive in append order as contiguous
// per-command batches.
type Sink interface {
	Publish(Event)
}

// Journal is the append-only outbound event log of a game. Commands append
// events while mutating state and flush once the mutation is complete, so a
// suspending sink can never observe a half-applied command.
type Journal struct {
	mu      sync.Mutex
	gameID  string
	sink    Sink
	pending []Event
}

// NewJournal creates a journal for the given room, routed to sink. A nil
// sink discards everything, which keeps the engine embeddable in tests.
func NewJournal(gameID string, sink Sink) *Journal {
	return &Journal{gameID: gameID, sink: sink}
}

// Add appends an event to the pending batch.
func (j *Journal) Add(kind EventKind, playerID, data string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = append(j.pending, Event{
		Kind:     kind,
		GameID:   j.gameID,
		PlayerID: playerID,
		Data:     data,
		Ts:       time.Now().UnixMilli(),
	})
}

// Send flushes the pending batch to the sink in append order.
func (j *Journal) Send() {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()

	if j.sink == nil {
		return
	}
	for _, event := range batch {
		j.sink.Publish(event)
	}
}

// MemorySink records published events, for assertions in tests and for
// adapters that poll instead of subscribing.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends the event to the record.
func (m *MemorySink) Publish(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything published so far.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reset clears the record.
func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

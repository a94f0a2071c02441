package mau

import "testing"

func TestJournalBatchOrder(t *testing.T) {
	sink := &MemorySink{}
	j := NewJournal("room-1", sink)

	j.Add(EventGameJoin, "alice", "")
	j.Add(EventGameJoin, "bob", "")
	if got := len(sink.Events()); got != 0 {
		t.Fatalf("events visible before Send: %d", got)
	}

	j.Send()
	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].PlayerID != "alice" || events[1].PlayerID != "bob" {
		t.Errorf("events out of append order: %v", events)
	}
	for _, e := range events {
		if e.GameID != "room-1" {
			t.Errorf("event game id = %q, want room-1", e.GameID)
		}
		if e.Ts == 0 {
			t.Error("event timestamp not set")
		}
	}

	// A flushed journal starts a fresh batch.
	j.Send()
	if got := len(sink.Events()); got != 2 {
		t.Errorf("empty Send published events: %d", got)
	}
}

func TestJournalNilSink(t *testing.T) {
	j := NewJournal("room-1", nil)
	j.Add(EventGameStart, "", "rn5")
	j.Send()
}

func TestMemorySinkReset(t *testing.T) {
	sink := &MemorySink{}
	sink.Publish(Event{Kind: EventGameUno})
	sink.Reset()
	if got := len(sink.Events()); got != 0 {
		t.Errorf("events after reset: %d", got)
	}
}

package event

import "testing"

func TestEmitter_OnAndUnsubscribe(t *testing.T) {
	e := NewEmitter()

	var got []string
	off := e.On(ChatCompleted, func(ev Event) {
		got = append(got, ev.EventName())
	})

	e.Emit(ChatCompletedEvent{UserID: "u1", ConversationID: "c1"})
	e.Emit(MemoryCreatedEvent{UserID: "u1", MemoryID: "m1"})
	if len(got) != 1 || got[0] != ChatCompleted {
		t.Fatalf("got %v, want one %s", got, ChatCompleted)
	}

	off()
	e.Emit(ChatCompletedEvent{UserID: "u1", ConversationID: "c1"})
	if len(got) != 1 {
		t.Fatalf("listener still called after unsubscribe: %v", got)
	}
}

func TestEmitter_OnAnyReceivesEverything(t *testing.T) {
	e := NewEmitter()

	var count int
	off := e.OnAny(func(ev Event) { count++ })
	defer off()

	e.Emit(ConversationArchivedEvent{UserID: "u1", ConversationID: "c1", MessageCount: 3})
	e.Emit(ArchiveRunCompletedEvent{Processed: 1, Archived: 1})
	if count != 2 {
		t.Fatalf("wildcard listener called %d times, want 2", count)
	}
}

func TestEmitter_UnsubscribeIsIndependent(t *testing.T) {
	e := NewEmitter()

	var a, b int
	offA := e.On(MemoryDeleted, func(Event) { a++ })
	e.On(MemoryDeleted, func(Event) { b++ })

	offA()
	e.Emit(MemoryDeletedEvent{UserID: "u1", MemoryID: "m1"})
	if a != 0 || b != 1 {
		t.Fatalf("a=%d b=%d, want 0 and 1", a, b)
	}
}

package chat

import (
	"sync"
	"testing"

	"github.com/fiine-pro/support-chat/internal/domain"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("Expected miss for unknown conversation")
	}

	sess := &domain.Session{ConversationID: "c1", CurrentAgent: "Triage Agent"}
	store.Save("c1", sess)

	got, ok := store.Get("c1")
	if !ok || got.CurrentAgent != "Triage Agent" {
		t.Errorf("Unexpected session %+v (ok=%v)", got, ok)
	}

	store.Delete("c1")
	if _, ok := store.Get("c1"); ok {
		t.Error("Expected session to be deleted")
	}
}

func TestLockSerializesSameConversation(t *testing.T) {
	store := NewMemorySessionStore()

	const turns = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("c1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != turns {
		t.Errorf("Expected %d serialized increments, got %d", turns, counter)
	}
}

package documents_test

import (
	"testing"
	"time"

	"augenblick-backend/internal/documents"
)

func TestBrokerDeliversToSubscribers(t *testing.T) {
	broker := documents.NewBroker()
	ch, cancel := broker.Subscribe("doc-1")
	defer cancel()

	broker.Publish(documents.Document{ID: "doc-1", Content: "hello"})

	select {
	case doc := <-ch:
		if doc.Content != "hello" {
			t.Fatalf("expected content hello, got %q", doc.Content)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for snapshot")
	}
}

func TestBrokerIsolatesDocuments(t *testing.T) {
	broker := documents.NewBroker()
	ch, cancel := broker.Subscribe("doc-1")
	defer cancel()

	broker.Publish(documents.Document{ID: "doc-2", Content: "other"})

	select {
	case doc := <-ch:
		t.Fatalf("unexpected snapshot for %s", doc.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsOldestWhenBufferFull(t *testing.T) {
	broker := documents.NewBroker()
	ch, cancel := broker.Subscribe("doc-1")
	defer cancel()

	// Publish more snapshots than the buffer holds without draining.
	for i := 0; i < 20; i++ {
		broker.Publish(documents.Document{ID: "doc-1", Content: string(rune('a' + i))})
	}

	var last documents.Document
	for {
		select {
		case doc := <-ch:
			last = doc
			continue
		default:
		}
		break
	}
	if last.Content != "t" {
		t.Fatalf("expected latest snapshot to survive, got %q", last.Content)
	}
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	broker := documents.NewBroker()
	ch, cancel := broker.Subscribe("doc-1")

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}

	// Cancel is idempotent and publish after cancel is a no-op.
	cancel()
	broker.Publish(documents.Document{ID: "doc-1"})
}

package services

import (
	"testing"
	"time"
)

func TestEventHub_SubscribePublish(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe("client-1")
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, expected 1", hub.ClientCount())
	}

	hub.Publish(LifecycleEvent{Kind: "contract", ContractID: 7, Status: "analyzed"})

	select {
	case ev := <-ch:
		if ev.ContractID != 7 || ev.Status != "analyzed" {
			t.Errorf("received %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventHub_Unsubscribe(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe("client-1")
	hub.Unsubscribe("client-1")

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, expected 0", hub.ClientCount())
	}

	// Channel is closed on unsubscribe so stream loops terminate.
	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
}

func TestEventHub_BroadcastsToAllClients(t *testing.T) {
	hub := NewEventHub()

	ch1 := hub.Subscribe("a")
	ch2 := hub.Subscribe("b")

	hub.Publish(LifecycleEvent{Kind: "change_request", ContractID: 1, ChangeRequestID: 2, Status: "approved"})

	for i, ch := range []<-chan LifecycleEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.ChangeRequestID != 2 {
				t.Errorf("client %d received %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d did not receive event", i)
		}
	}
}

func TestEventHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewEventHub()
	hub.Subscribe("slow")

	// Nothing drains the channel; publishing past the buffer must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(LifecycleEvent{Kind: "contract", ContractID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow client")
	}
}

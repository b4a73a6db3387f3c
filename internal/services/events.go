package services

import (
	"sync"
)

// LifecycleEvent is a real-time status update for a contract or one of its
// change requests.
type LifecycleEvent struct {
	Kind            string `json:"kind"` // contract, change_request
	ContractID      uint   `json:"contract_id"`
	ChangeRequestID uint   `json:"change_request_id,omitempty"`
	Status          string `json:"status"`
	Error           string `json:"error,omitempty"`
}

// EventHub manages SSE client connections and event broadcasting.
type EventHub struct {
	clients map[string]chan LifecycleEvent
	mu      sync.RWMutex
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan LifecycleEvent),
	}
}

// Subscribe registers a client and returns its event channel. The channel is
// buffered; slow consumers drop events rather than block publishers.
func (h *EventHub) Subscribe(clientID string) <-chan LifecycleEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan LifecycleEvent, 100)
	h.clients[clientID] = ch
	return ch
}

func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients.
func (h *EventHub) Publish(event LifecycleEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// client buffer full, skip
		}
	}
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var globalEventHub *EventHub
var eventHubOnce sync.Once

// GetEventHub returns the global event hub singleton.
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}

// PublishContractEvent notifies subscribers of a contract status change.
func PublishContractEvent(contractID uint, status, errMsg string) {
	GetEventHub().Publish(LifecycleEvent{
		Kind:       "contract",
		ContractID: contractID,
		Status:     status,
		Error:      errMsg,
	})
}

// PublishChangeEvent notifies subscribers of a change request status change.
func PublishChangeEvent(changeRequestID, contractID uint, status, errMsg string) {
	GetEventHub().Publish(LifecycleEvent{
		Kind:            "change_request",
		ContractID:      contractID,
		ChangeRequestID: changeRequestID,
		Status:          status,
		Error:           errMsg,
	})
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Resources that emit change events.
const (
	ResourceTransaction = "transaction"
	ResourcePlanItem    = "plan_item"
)

// Actions recorded by change events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is a lightweight notification that a record was written.
// Consumers re-read the store instead of trusting a payload copy.
type ChangeEvent struct {
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent creates an event stamped with the current time.
func NewChangeEvent(resource, action, id string) *ChangeEvent {
	return &ChangeEvent{
		Resource:  resource,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// Type returns the dotted event name, e.g. "transaction.created".
func (e *ChangeEvent) Type() string {
	return e.Resource + "." + e.Action
}

// ToJSON converts the message to JSON bytes
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes, rejecting events
// without a resource or action.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Resource == "" || e.Action == "" {
		return nil, fmt.Errorf("change event missing resource or action")
	}
	return &e, nil
}

package models

import jsoniter "github.com/json-iterator/go"

// Operation names of the audit/analytics call event stream.
const (
	OperationCallCreated = "calls.created"
	OperationCallStarted = "calls.started"
	OperationCallJoined  = "calls.joined"
	OperationCallLeaved  = "calls.leaved"
	OperationCallStopped = "calls.stopped"
	OperationCallDeleted = "calls.deleted"
)

// CallUpdate is what user listeners receive: a call state transition or a
// participant joining or leaving. PartID is empty for state transitions.
type CallUpdate struct {
	CallID       string `json:"call_id"`
	ProviderType string `json:"provider_type"`
	CallState    string `json:"call_state,omitempty"`
	PartID       string `json:"part_id,omitempty"`
	OwnerID      string `json:"owner_id"`
	OwnerType    string `json:"owner_type"`
}

// UnifiedCommand is the websocket wire envelope for pushed updates.
type UnifiedCommand struct {
	Action  string `json:"w"`
	Message string `json:"m,omitempty"`
	Payload any    `json:"p,omitempty"`
}

func (v UnifiedCommand) Marshal() []byte {
	data, _ := jsoniter.Marshal(v)
	return data
}

func UnifiedCommandFromError(err error) UnifiedCommand {
	return UnifiedCommand{
		Action:  "error",
		Message: err.Error(),
	}
}

// CallEvent is one entry of the call event stream exposed to analytics and
// audit consumers. Delivery is at-most-once and best-effort.
type CallEvent struct {
	Operation string `json:"operation"`
	ActorID   string `json:"actor_id,omitempty"`
	Call      Call   `json:"call"`
}

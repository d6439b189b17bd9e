package events

import "time"

const (
	TypeTurnCompleted      = "TURN_COMPLETED"
	TypePersonaFailed      = "PERSONA_FAILED"
	TypeBlueprintGenerated = "BLUEPRINT_GENERATED"
)

// Event is anything published to the turn event bus.
type Event interface {
	// EventType returns the code used as the routing key, e.g. "TURN_COMPLETED".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func TurnCompleted(sessionID string, personas, failed int, searchUsed bool, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"personas":    personas,
			"failed":      failed,
			"search_used": searchUsed,
		},
		OccurredAt: at,
	}
}

func PersonaFailed(sessionID, personaID, reason string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypePersonaFailed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"persona_id": personaID,
			"reason":     reason,
		},
		OccurredAt: at,
	}
}

func BlueprintGenerated(sessionID string, entries int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeBlueprintGenerated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"entries":    entries,
		},
		OccurredAt: at,
	}
}

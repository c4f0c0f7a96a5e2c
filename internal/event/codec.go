package event

import (
	"encoding/json"
	"fmt"
)

// envelope is the self-describing wire form of every message body.
// The shape is stable and versionless: {"event_type": str, "data": map}.
type envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// MalformedEventError reports a message body that could not be decoded.
// The raw body is retained so it can be logged for forensic replay.
type MalformedEventError struct {
	Body   []byte
	Reason string
}

// Error implements the error interface
func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event: %s", e.Reason)
}

// UnknownEventTypeError reports an envelope whose event_type is not one of
// the five known kinds.
type UnknownEventTypeError struct {
	EventType string
}

// Error implements the error interface
func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type: %s", e.EventType)
}

// Encode serializes an event into the wire envelope.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	body, err := json.Marshal(envelope{
		EventType: ev.EventType(),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return body, nil
}

// Decode parses a wire envelope into its typed event. It returns
// *MalformedEventError when the body is not valid JSON, the event_type is
// absent, or the data does not match the event's field types, and
// *UnknownEventTypeError for event kinds this codec does not know.
//
// A data field that arrives as a nested JSON-encoded string is unwrapped
// with one extra decode pass before failing. Older identity-service
// builds double-encoded the user.registered payload; the shim keeps those
// messages readable.
func Decode(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedEventError{Body: body, Reason: err.Error()}
	}
	if env.EventType == "" {
		return nil, &MalformedEventError{Body: body, Reason: "missing event_type"}
	}

	data := env.Data
	if isJSONString(data) {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, &MalformedEventError{Body: body, Reason: "unreadable double-encoded data"}
		}
		data = []byte(inner)
	}

	ev, err := newEvent(env.EventType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, &MalformedEventError{Body: body, Reason: fmt.Sprintf("bad %s data: %v", env.EventType, err)}
	}
	return ev, nil
}

// newEvent returns a zero value of the concrete kind for an event type.
func newEvent(eventType string) (Event, error) {
	switch eventType {
	case TypeUserRegistered:
		return &UserRegistered{}, nil
	case TypeUserUpdated:
		return &UserUpdated{}, nil
	case TypeExpenseCreated:
		return &ExpenseCreated{}, nil
	case TypeExpenseUpdated:
		return &ExpenseUpdated{}, nil
	case TypeExpenseDeleted:
		return &ExpenseDeleted{}, nil
	default:
		return nil, &UnknownEventTypeError{EventType: eventType}
	}
}

func isJSONString(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '"'
		}
	}
	return false
}

// Package events carries clinic request change notifications over NATS so
// that open list views can refresh when another operator changes the data.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/zayafka/internal/model"
)

// Event topic constants
const (
	TopicRequestCreated = "clinic.requests.created"
	TopicRequestUpdated = "clinic.requests.updated"
	TopicRequestDeleted = "clinic.requests.deleted"

	// TopicAllRequests matches every request topic.
	TopicAllRequests = "clinic.requests.>"
)

// Event types

type RequestCreated struct {
	Request *model.ClinicRequest `json:"request"`
}

type RequestUpdated struct {
	Request *model.ClinicRequest `json:"request"`
	Changes map[string]any       `json:"changes,omitempty"` // field name -> new value
}

type RequestDeleted struct {
	RequestID string `json:"request_id"`
	DeletedBy string `json:"deleted_by,omitempty"`
}

// Message is one delivery from the bus.
type Message struct {
	Subject string
	Data    []byte
}

// Action returns the last token of the subject ("created", "deleted", ...).
func (m Message) Action() string {
	if i := strings.LastIndexByte(m.Subject, '.'); i >= 0 {
		return m.Subject[i+1:]
	}
	return m.Subject
}

// RequestID extracts the affected request id from a known event payload.
// It returns "" when the payload carries none.
func (m Message) RequestID() string {
	switch m.Subject {
	case TopicRequestDeleted:
		var e RequestDeleted
		if json.Unmarshal(m.Data, &e) == nil {
			return e.RequestID
		}
	case TopicRequestCreated, TopicRequestUpdated:
		var e RequestUpdated
		if json.Unmarshal(m.Data, &e) == nil && e.Request != nil {
			return e.Request.ID
		}
	}
	return ""
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

func encode(event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}
	return data, nil
}

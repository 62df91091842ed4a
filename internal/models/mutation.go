// Package models provides data model definitions for the UnivMarket offline core.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the pending mutation variants.
type Kind string

const (
	KindMessage Kind = "message"
	KindListing Kind = "listing"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMessage, KindListing:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown mutation kind: %q", s)
}

// MessageMutation is the payload needed to replay a send-message action.
type MessageMutation struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	ProductID  string `json:"productId,omitempty"`
	Content    string `json:"content"`
}

// ListingMutation is the payload needed to replay a create-listing action.
type ListingMutation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"` // cents
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
	Location    string   `json:"location,omitempty"`
	IsBidding   bool     `json:"isBidding"`
	CategoryID  string   `json:"categoryId"`
	UserID      string   `json:"userId"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}

// PendingMutation is a durable record of a user write awaiting replay.
type PendingMutation struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	PendingSince time.Time       `json:"pendingSince"`
	Attempts     int             `json:"attempts"`
}

// NewPendingID generates a queue entry id of the form
// pending_<epoch-millis>_<9-char suffix>.
func NewPendingID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("pending_%d_%s", time.Now().UnixMilli(), suffix)
}

// Message returns the decoded message payload.
// Calling it on a non-message mutation is an error.
func (m *PendingMutation) Message() (*MessageMutation, error) {
	if m.Kind != KindMessage {
		return nil, fmt.Errorf("mutation %s is a %s, not a message", m.ID, m.Kind)
	}
	var msg MessageMutation
	if err := json.Unmarshal(m.Payload, &msg); err != nil {
		return nil, fmt.Errorf("decode message payload: %w", err)
	}
	return &msg, nil
}

// Listing returns the decoded listing payload.
// Calling it on a non-listing mutation is an error.
func (m *PendingMutation) Listing() (*ListingMutation, error) {
	if m.Kind != KindListing {
		return nil, fmt.Errorf("mutation %s is a %s, not a listing", m.ID, m.Kind)
	}
	var l ListingMutation
	if err := json.Unmarshal(m.Payload, &l); err != nil {
		return nil, fmt.Errorf("decode listing payload: %w", err)
	}
	return &l, nil
}

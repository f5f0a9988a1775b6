package model

import "time"

// TicketRecord is a helpdesk ticket as returned by the ticket-fetch
// collaborator.
type TicketRecord struct {
	ID              int64          `json:"id"`
	Subject         string         `json:"subject"`
	DescriptionText string         `json:"description_text"`
	CreatedAt       time.Time      `json:"created_at"`
	CustomFields    map[string]any `json:"custom_fields,omitempty"`
}

// ConversationRecord is a single reply on a helpdesk ticket. Body holds the
// HTML form, BodyText the plain-text form; either may be empty.
type ConversationRecord struct {
	BodyText  string `json:"body_text"`
	Body      string `json:"body"`
	FromEmail string `json:"from_email"`
	UserID    int64  `json:"user_id"`
}

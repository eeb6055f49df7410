package models

import (
	"time"
)

// ChatMessage is one chat turn. User turns may carry the assistant's reply
// in Response; assistant turns keep their text in Message.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	Response  *string   `db:"response" json:"response,omitempty"`
	IsUser    bool      `db:"is_user" json:"is_user"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

package model

import "time"

// Lead is a contact request captured from a conversation.
type Lead struct {
	ID        string    `json:"id" db:"id"`
	Channel   string    `json:"channel" db:"channel"`
	Name      string    `json:"name,omitempty" db:"name"`
	Email     string    `json:"email,omitempty" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CarID     string    `json:"car_id,omitempty" db:"car_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

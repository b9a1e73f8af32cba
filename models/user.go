package models

import "time"

type User struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `json:"name"`
	SessionHash string    `json:"-"` // SHA-256 of the live session token; never exposed
}

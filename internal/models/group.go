package models

import "time"

// Group is a recurring meeting owned by its master user.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Chronic     string    `json:"chronic"`
	Schedule    string    `json:"schedule"`
	Location    string    `json:"location"`
	Master      string    `json:"master"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

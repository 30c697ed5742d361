package model

import "time"

// Department is the organizational scope that owns assets and sessions.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

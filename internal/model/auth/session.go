package auth

import "time"

// Session correlates a browser cookie with server-side login state. Sessions
// live in process memory only and are lost on restart.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

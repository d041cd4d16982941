package domain

import "time"

// User is an author account. Identity resolution happens upstream;
// the server only needs users to exist so links can reference them.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

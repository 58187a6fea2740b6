package domain

import "time"

// Contact is an entry in the directory.
type Contact struct {
	ID        int64
	Name      string
	DDD       string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package domain

import "time"

type User struct {
	ID             string
	Email          string // unique, stored lower-case
	PasswordDigest string // base64 PBKDF2-HMAC-SHA256
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

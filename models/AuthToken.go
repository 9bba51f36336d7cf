package models

import "time"

// AuthToken stores the identifier (jti) of an issued bearer token so that
// logout can revoke it. A token whose row is gone no longer authenticates,
// even when its signature is still valid.
type AuthToken struct {
	ID        string `gorm:"primarykey;size:36"`
	UserID    uint   `gorm:"not null;index"`
	CreatedAt time.Time
}

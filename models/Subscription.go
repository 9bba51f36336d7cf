package models

import "time"

// Subscription records that UserID follows AuthorID. Rows are created and
// hard-deleted by the membership toggle, so the struct stays clear of soft
// deletion to keep the composite unique index reusable.
type Subscription struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"user_id"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"author_id"`
	CreatedAt time.Time
}

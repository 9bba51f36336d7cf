package models

import (
	"regexp"

	"gorm.io/gorm"
)

// User represents an account that can author recipes and authenticate
// against the API. Email is the authentication identifier.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null;size:254" json:"email"`
	Username     string `gorm:"uniqueIndex;not null;size:150" json:"username"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	PasswordHash string `gorm:"not null" json:"-"`
	// Avatar holds the media-relative path of the uploaded image,
	// empty when the user has no avatar.
	Avatar string `json:"avatar"`
}

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}.@+_-]+$`)

// ValidUsername reports whether value is an acceptable username:
// letters, digits and the @/./+/-/_ characters.
func ValidUsername(value string) bool {
	return value != "" && usernamePattern.MatchString(value)
}

package models

import (
	"regexp"

	"gorm.io/gorm"
)

// Tag is reference data attached to recipes for filtering.
type Tag struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null;size:32" json:"name"`
	Slug string `gorm:"uniqueIndex;not null;size:32" json:"slug"`
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether value fits the URL-slug alphabet.
func ValidSlug(value string) bool {
	return value != "" && slugPattern.MatchString(value)
}

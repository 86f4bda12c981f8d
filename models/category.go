package models

import (
	"regexp"
	"time"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Category groups posts. Only posts of a published category are publicly visible.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidSlug reports whether s may be used as a category URL identifier:
// latin letters, digits, hyphen and underscore.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

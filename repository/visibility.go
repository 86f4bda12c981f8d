package repository

import (
	"time"

	"gorm.io/gorm"
)

// Visible restricts a posts query to publicly visible posts at now: published,
// pub_date not after now, and filed under a published category. Callers capture
// now once per request and reuse it for every check.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	now = now.UTC()
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("posts.category_id IN (SELECT categories.id FROM categories WHERE categories.is_published = ?)", true)
	}
}

// ByAuthor restricts a posts query to one author.
func ByAuthor(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", authorID)
	}
}

// InCategory restricts a posts query to one category.
func InCategory(categoryID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.category_id = ?", categoryID)
	}
}

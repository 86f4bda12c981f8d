package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. A PubDate in the future schedules the publication.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Image       string    `gorm:"size:1024" json:"image,omitempty"`
	ImageKey    string    `gorm:"size:1024" json:"-"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	Location    *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Comments    []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// VisibleAt reports whether the post is publicly visible at now: published,
// not scheduled past now, and filed under a published category.
// Category must be loaded.
func (p *Post) VisibleAt(now time.Time) bool {
	return p.IsPublished && !p.PubDate.After(now) && p.Category != nil && p.Category.IsPublished
}

// BeforeSave stores the publication date in UTC so stored values compare consistently.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.PubDate = p.PubDate.UTC()
	return nil
}

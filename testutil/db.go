// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/blogicum/models"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

// NewFixtures binds fixture helpers to db.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User creates a user with the given username.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Category creates a category.
func (f *Fixtures) Category(slug string, published bool) *models.Category {
	f.t.Helper()
	c := &models.Category{Title: strings.ToUpper(slug), Slug: slug, Description: "about " + slug, IsPublished: published}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

// Location creates a published location.
func (f *Fixtures) Location(name string) *models.Location {
	f.t.Helper()
	l := &models.Location{Name: name, IsPublished: true}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

// Post creates a post by author in category (nil allowed).
func (f *Fixtures) Post(title string, author *models.User, category *models.Category, pubDate time.Time, published bool) *models.Post {
	f.t.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	require.NoError(f.t, f.db.Omit("Author", "Category", "Location").Create(p).Error)
	return p
}

// Comment creates a comment with an explicit creation time.
func (f *Fixtures) Comment(text string, post *models.Post, author *models.User, createdAt time.Time) *models.Comment {
	f.t.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID, CreatedAt: createdAt}
	require.NoError(f.t, f.db.Omit("Author").Create(c).Error)
	return c
}

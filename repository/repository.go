// Package repository holds the explicit query functions behind every page:
// filters, ordering and pagination are passed in, results come back materialized.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/blogicum/utils"
)

var (
	// ErrNotFound covers both missing rows and rows hidden from the requester.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique value (username, slug) is taken.
	ErrConflict = errors.New("record already exists")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// paginate counts q, resolves the requested page and loads it.
func paginate[T any](q *gorm.DB, rawPage, order string, preloads ...string) (utils.Page[T], error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return utils.Page[T]{}, err
	}
	number, numPages, offset := utils.PageWindow(rawPage, total, utils.PageSize)

	find := q.Session(&gorm.Session{})
	for _, p := range preloads {
		find = find.Preload(p)
	}
	var items []T
	if err := find.Order(order).Offset(offset).Limit(utils.PageSize).Find(&items).Error; err != nil {
		return utils.Page[T]{}, err
	}
	return utils.NewPage(items, number, numPages, utils.PageSize, total), nil
}

// Repositories bundles every repository over one connection.
type Repositories struct {
	Users      *UserRepository
	Posts      *PostRepository
	Comments   *CommentRepository
	Categories *CategoryRepository
	Locations  *LocationRepository
}

// New builds all repositories over db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Posts:      NewPostRepository(db),
		Comments:   NewCommentRepository(db),
		Categories: NewCategoryRepository(db),
		Locations:  NewLocationRepository(db),
	}
}

package repository

import (
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// CategoryRepository reads and writes categories.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a CategoryRepository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindPublishedBySlug loads a published category; unpublished ones are ErrNotFound.
func (r *CategoryRepository) FindPublishedBySlug(slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.Where("slug = ? AND is_published = ?", slug, true).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindByID loads a category regardless of its flag.
func (r *CategoryRepository) FindByID(id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns all categories by title.
func (r *CategoryRepository) List() ([]models.Category, error) {
	items := []models.Category{}
	err := r.db.Order("title ASC, id ASC").Find(&items).Error
	return items, err
}

// Create inserts a category; a taken slug is ErrConflict.
func (r *CategoryRepository) Create(c *models.Category) error {
	if taken, err := r.slugTaken(c.Slug, 0); err != nil {
		return err
	} else if taken {
		return ErrConflict
	}
	return translate(r.db.Create(c).Error)
}

// Update writes every field of c.
func (r *CategoryRepository) Update(c *models.Category) error {
	if taken, err := r.slugTaken(c.Slug, c.ID); err != nil {
		return err
	} else if taken {
		return ErrConflict
	}
	return translate(r.db.Model(c).Select("Title", "Description", "Slug", "IsPublished").Updates(c).Error)
}

// Delete removes a category. Its posts stay, with category_id set to NULL.
func (r *CategoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *CategoryRepository) slugTaken(slug string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&n).Error
	return n > 0, err
}

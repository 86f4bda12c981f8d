package repository

import (
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// LocationRepository reads and writes locations.
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a LocationRepository.
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindByID loads a location.
func (r *LocationRepository) FindByID(id uint) (*models.Location, error) {
	var l models.Location
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// List returns all locations by name.
func (r *LocationRepository) List() ([]models.Location, error) {
	items := []models.Location{}
	err := r.db.Order("name ASC, id ASC").Find(&items).Error
	return items, err
}

// Create inserts a location.
func (r *LocationRepository) Create(l *models.Location) error {
	return translate(r.db.Create(l).Error)
}

// Update writes every field of l.
func (r *LocationRepository) Update(l *models.Location) error {
	return translate(r.db.Model(l).Select("Name", "IsPublished").Updates(l).Error)
}

// Delete removes a location. Its posts stay, with location_id set to NULL.
func (r *LocationRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Location{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

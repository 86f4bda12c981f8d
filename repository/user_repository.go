package repository

import (
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// UserRepository reads and writes users.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user.
func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// FindByUsername loads a user by exact username.
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Create inserts a user; a taken username is ErrConflict.
func (r *UserRepository) Create(u *models.User) error {
	if taken, err := r.usernameTaken(u.Username, 0); err != nil {
		return err
	} else if taken {
		return ErrConflict
	}
	return translate(r.db.Create(u).Error)
}

// UpdateProfile writes the user-editable profile fields.
func (r *UserRepository) UpdateProfile(u *models.User) error {
	if taken, err := r.usernameTaken(u.Username, u.ID); err != nil {
		return err
	} else if taken {
		return ErrConflict
	}
	return translate(r.db.Model(u).Select("Username", "FirstName", "LastName", "Email").Updates(u).Error)
}

// Delete removes a user with their posts, the comments on those posts, and their comments.
func (r *UserRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("post_id IN (?) OR author_id = ?", authored, id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Count returns the number of users.
func (r *UserRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) usernameTaken(username string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("username = ? AND id <> ?", username, exceptID).Count(&n).Error
	return n > 0, err
}

package repository

import (
	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
)

// CommentRepository reads and writes comments.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a CommentRepository.
func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListForPost returns all comments of a post, oldest first, authors loaded.
func (r *CommentRepository) ListForPost(postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// FindInPost loads a comment that belongs to postID.
func (r *CommentRepository) FindInPost(id, postID uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.Preload("Author").Where("id = ? AND post_id = ?", id, postID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindOwned loads a comment of postID only if authorID wrote it.
func (r *CommentRepository) FindOwned(id, postID, authorID uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.Preload("Author").
		Where("id = ? AND post_id = ? AND author_id = ?", id, postID, authorID).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Create inserts a comment.
func (r *CommentRepository) Create(c *models.Comment) error {
	return translate(r.db.Omit("Author").Create(c).Error)
}

// UpdateText rewrites the comment body.
func (r *CommentRepository) UpdateText(c *models.Comment, text string) error {
	c.Text = text
	return translate(r.db.Model(c).Select("Text").Updates(c).Error)
}

// Delete removes a comment.
func (r *CommentRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of comments.
func (r *CommentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Comment{}).Count(&n).Error
	return n, err
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

const postOrder = "posts.pub_date DESC, posts.id DESC"

var postPreloads = []string{"Author", "Category", "Location"}

// PostRepository reads and writes posts.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// ListVisible returns one page of publicly visible posts, newest first.
func (r *PostRepository) ListVisible(now time.Time, rawPage string) (utils.Page[models.Post], error) {
	return r.list(rawPage, Visible(now))
}

// ListVisibleInCategory returns one page of visible posts of a category.
func (r *PostRepository) ListVisibleInCategory(now time.Time, categoryID uint, rawPage string) (utils.Page[models.Post], error) {
	return r.list(rawPage, Visible(now), InCategory(categoryID))
}

// ListByAuthor returns one page of an author's posts. With includeHidden the
// visibility filter is skipped; that view belongs to the author alone.
func (r *PostRepository) ListByAuthor(authorID uint, includeHidden bool, now time.Time, rawPage string) (utils.Page[models.Post], error) {
	if includeHidden {
		return r.list(rawPage, ByAuthor(authorID))
	}
	return r.list(rawPage, Visible(now), ByAuthor(authorID))
}

func (r *PostRepository) list(rawPage string, scopes ...func(*gorm.DB) *gorm.DB) (utils.Page[models.Post], error) {
	q := r.db.Model(&models.Post{}).Scopes(scopes...)
	page, err := paginate[models.Post](q, rawPage, postOrder, postPreloads...)
	if err != nil {
		return page, err
	}
	if err := r.attachCommentCounts(page.Items); err != nil {
		return page, err
	}
	return page, nil
}

func (r *PostRepository) attachCommentCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	var rows []struct {
		PostID uint
		N      int64
	}
	if err := r.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}

// FindByID loads a post with author, category and location regardless of visibility.
func (r *PostRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	q := r.db
	for _, p := range postPreloads {
		q = q.Preload(p)
	}
	if err := q.First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// FindForViewer returns the post if viewerID is its author, or if it is visible
// at now. Anything else is ErrNotFound. viewerID 0 is an anonymous visitor.
func (r *PostRepository) FindForViewer(id, viewerID uint, now time.Time) (*models.Post, error) {
	post, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if viewerID != 0 && post.AuthorID == viewerID {
		return post, nil
	}
	if !post.VisibleAt(now) {
		return nil, ErrNotFound
	}
	return post, nil
}

// FindOwned loads a post only if authorID wrote it.
func (r *PostRepository) FindOwned(id, authorID uint) (*models.Post, error) {
	var post models.Post
	q := r.db.Scopes(ByAuthor(authorID))
	for _, p := range postPreloads {
		q = q.Preload(p)
	}
	if err := q.First(&post, "posts.id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// Create inserts a post.
func (r *PostRepository) Create(post *models.Post) error {
	return translate(r.db.Omit("Author", "Category", "Location", "Comments").Create(post).Error)
}

// Update writes the editable fields of a post.
func (r *PostRepository) Update(post *models.Post) error {
	return translate(r.db.Model(post).
		Select("Title", "Text", "Image", "ImageKey", "PubDate", "LocationID", "CategoryID").
		Updates(post).Error)
}

// SetPublished sets the post's is_published flag.
func (r *PostRepository) SetPublished(id uint, published bool) error {
	var n int64
	if err := r.db.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return r.db.Model(&models.Post{}).Where("id = ?", id).Update("is_published", published).Error
}

// Delete removes a post together with its comments.
func (r *PostRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// NextScheduled returns the earliest pub_date after now among published posts,
// the next moment the public listing can change on its own.
func (r *PostRepository) NextScheduled(now time.Time) (time.Time, bool, error) {
	var post models.Post
	err := r.db.Select("pub_date").
		Where("is_published = ? AND pub_date > ?", true, now.UTC()).
		Order("pub_date ASC").
		Limit(1).
		Find(&post).Error
	if err != nil {
		return time.Time{}, false, err
	}
	if post.PubDate.IsZero() {
		return time.Time{}, false, nil
	}
	return post.PubDate, true, nil
}

// CountVisible counts publicly visible posts.
func (r *PostRepository) CountVisible(now time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&models.Post{}).Scopes(Visible(now)).Count(&n).Error
	return n, err
}

package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/storage"
	"github.com/cppla/blogicum/utils"
)

const (
	// postsCachePrefix covers every cached post listing.
	postsCachePrefix = "cache:posts:"
	contextPostKey   = "post"
)

// PostController serves post listings, details and the author's post forms.
type PostController struct {
	repos   *repository.Repositories
	storage storage.Storage
	cache   *utils.Cache
	cfg     config.AppConfig
}

// NewPostController creates a new PostController instance.
func NewPostController(repos *repository.Repositories, st storage.Storage, cache *utils.Cache, cfg config.AppConfig) *PostController {
	return &PostController{repos: repos, storage: st, cache: cache, cfg: cfg}
}

type postForm struct {
	Title      string `form:"title" json:"title"`
	Text       string `form:"text" json:"text"`
	PubDate    string `form:"pub_date" json:"pub_date"`
	LocationID *uint  `form:"location" json:"location"`
	CategoryID *uint  `form:"category" json:"category"`
	ClearImage bool   `form:"image_clear" json:"image_clear"`
}

func formFromPost(post *models.Post) gin.H {
	return gin.H{
		"title":    post.Title,
		"text":     post.Text,
		"pub_date": post.PubDate.Format(time.RFC3339),
		"location": post.LocationID,
		"category": post.CategoryID,
		"image":    post.Image,
	}
}

// ListPosts returns the paginated public feed. Rendered pages are cached until the
// next scheduled publication at the latest.
func (p *PostController) ListPosts(ctx *gin.Context) {
	cacheKey := postsCachePrefix + "list:page=" + ctx.Query("page")
	if b, ok := p.cache.GetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	now := middleware.RequestTime(ctx)
	page, err := p.repos.Posts.ListVisible(now, ctx.Query("page"))
	if err != nil {
		respondError(ctx, err, "list posts")
		return
	}

	payload := gin.H{"page": page}
	if ttl := p.listTTL(now); ttl >= time.Second {
		p.cache.SetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, ttl)
	}
	utils.Success(ctx, payload)
}

// listTTL caps the cache lifetime so a scheduled post is not hidden behind a stale page.
func (p *PostController) listTTL(now time.Time) time.Duration {
	ttl := p.cache.DefaultTTL()
	next, ok, err := p.repos.Posts.NextScheduled(now)
	if err != nil {
		return 0
	}
	if ok {
		if until := next.Sub(now); until < ttl {
			ttl = until
		}
	}
	return ttl
}

// GetPost returns a post with its comments. Authors see their own hidden posts;
// everyone else gets 404 for anything not publicly visible.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	viewer := middleware.CurrentUser(ctx)
	post, err := p.repos.Posts.FindForViewer(id, middleware.CurrentUserID(ctx), middleware.RequestTime(ctx))
	if err != nil {
		respondError(ctx, err, "load post")
		return
	}
	comments, err := p.repos.Comments.ListForPost(post.ID)
	if err != nil {
		respondError(ctx, err, "list comments")
		return
	}

	data := gin.H{"post": post, "comments": comments}
	if viewer != nil {
		data["form"] = gin.H{"text": ""}
	}
	utils.Success(ctx, data)
}

// CategoryPosts lists the visible posts of a published category.
func (p *PostController) CategoryPosts(ctx *gin.Context) {
	category, err := p.repos.Categories.FindPublishedBySlug(ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err, "load category")
		return
	}
	page, err := p.repos.Posts.ListVisibleInCategory(middleware.RequestTime(ctx), category.ID, ctx.Query("page"))
	if err != nil {
		respondError(ctx, err, "list category posts")
		return
	}
	utils.Success(ctx, gin.H{"category": category, "page": page})
}

// NewPostForm returns an empty post form with the available choices.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	choices, err := p.choices()
	if err != nil {
		respondError(ctx, err, "load choices")
		return
	}
	choices["form"] = gin.H{"title": "", "text": "", "pub_date": "", "location": nil, "category": nil}
	utils.Success(ctx, choices)
}

func (p *PostController) choices() (gin.H, error) {
	categories, err := p.repos.Categories.List()
	if err != nil {
		return nil, err
	}
	locations, err := p.repos.Locations.List()
	if err != nil {
		return nil, err
	}
	return gin.H{"categories": categories, "locations": locations}, nil
}

// CreatePost stores a new post by the requester and redirects to their profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	post := &models.Post{AuthorID: user.ID, IsPublished: true}
	if !p.applyForm(ctx, post) {
		return
	}
	if !p.attachImage(ctx, post) {
		return
	}
	if err := p.repos.Posts.Create(post); err != nil {
		p.discardImage(post.ImageKey)
		respondError(ctx, err, "create post")
		return
	}

	p.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Redirect(ctx, profileURL(user.Username), gin.H{"post": post})
}

// RequireAuthor loads the post into the context when the requester wrote it.
// Missing posts are 404; posts of someone else go to onDenied, or 404 when nil.
func (p *PostController) RequireAuthor(onDenied gin.HandlerFunc) gin.HandlerFunc {
	return p.requireOwner(false, onDenied)
}

// RequireAuthorOrAdmin is RequireAuthor that also admits configured admins.
func (p *PostController) RequireAuthorOrAdmin() gin.HandlerFunc {
	return p.requireOwner(true, nil)
}

func (p *PostController) requireOwner(allowAdmin bool, onDenied gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := paramID(ctx, "id")
		if !ok {
			ctx.Abort()
			return
		}
		user := middleware.CurrentUser(ctx)
		post, err := p.repos.Posts.FindByID(id)
		privileged := allowAdmin && user != nil && p.cfg.IsAdmin(user.Username)
		if err == nil && !privileged && (user == nil || post.AuthorID != user.ID) {
			if onDenied != nil {
				onDenied(ctx)
				ctx.Abort()
				return
			}
			err = repository.ErrNotFound
		}
		if err != nil {
			respondError(ctx, err, "load post")
			ctx.Abort()
			return
		}
		ctx.Set(contextPostKey, post)
		ctx.Next()
	}
}

// RedirectToPost sends the request to the post's detail page.
func (p *PostController) RedirectToPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	utils.Redirect(ctx, postURL(id), nil)
}

func guardedPost(ctx *gin.Context) *models.Post {
	post, _ := ctx.MustGet(contextPostKey).(*models.Post)
	return post
}

// EditPostForm returns the author's post populated into the form.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	post := guardedPost(ctx)
	choices, err := p.choices()
	if err != nil {
		respondError(ctx, err, "load choices")
		return
	}
	choices["form"] = formFromPost(post)
	choices["post"] = post
	utils.Success(ctx, choices)
}

// UpdatePost saves the author's changes and redirects to the post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post := guardedPost(ctx)
	oldKey := post.ImageKey
	if !p.applyForm(ctx, post) {
		return
	}
	if !p.attachImage(ctx, post) {
		return
	}
	if err := p.repos.Posts.Update(post); err != nil {
		if post.ImageKey != oldKey {
			p.discardImage(post.ImageKey)
		}
		respondError(ctx, err, "update post")
		return
	}
	if oldKey != "" && post.ImageKey != oldKey {
		p.discardImage(oldKey)
	}

	p.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Redirect(ctx, postURL(post.ID), gin.H{"post": post})
}

// DeletePostForm returns the post as a confirmation form.
func (p *PostController) DeletePostForm(ctx *gin.Context) {
	post := guardedPost(ctx)
	utils.Success(ctx, gin.H{"form": formFromPost(post), "post": post})
}

// DeletePost removes the post, its comments and its image.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post := guardedPost(ctx)
	if err := p.repos.Posts.Delete(post.ID); err != nil {
		respondError(ctx, err, "delete post")
		return
	}
	p.discardImage(post.ImageKey)
	p.cache.InvalidateByPrefix(postsCachePrefix)

	user := middleware.CurrentUser(ctx)
	utils.Redirect(ctx, profileURL(user.Username), nil)
}

// applyForm binds and validates the post form onto post. It writes the error
// response itself and returns false on invalid input.
func (p *PostController) applyForm(ctx *gin.Context, post *models.Post) bool {
	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		badRequest(ctx, 40020, "invalid request payload")
		return false
	}

	title := utils.SanitizePlain(form.Title)
	if title == "" {
		badRequest(ctx, 40021, "title cannot be empty")
		return false
	}
	if len([]rune(title)) > 256 {
		badRequest(ctx, 40021, "title is longer than 256 characters")
		return false
	}
	text := utils.Sanitize(form.Text)
	if text == "" {
		badRequest(ctx, 40022, "text cannot be empty")
		return false
	}
	fallback := post.PubDate
	if fallback.IsZero() {
		fallback = middleware.RequestTime(ctx)
	}
	pubDate, err := parsePubDate(form.PubDate, fallback)
	if err != nil {
		badRequest(ctx, 40023, "invalid pub_date")
		return false
	}

	if form.CategoryID == nil || *form.CategoryID == 0 {
		badRequest(ctx, 40024, "category is required")
		return false
	}
	category, err := p.repos.Categories.FindByID(*form.CategoryID)
	if errors.Is(err, repository.ErrNotFound) {
		badRequest(ctx, 40024, "category does not exist")
		return false
	} else if err != nil {
		respondError(ctx, err, "load category")
		return false
	}

	var location *models.Location
	if form.LocationID != nil && *form.LocationID != 0 {
		location, err = p.repos.Locations.FindByID(*form.LocationID)
		if errors.Is(err, repository.ErrNotFound) {
			badRequest(ctx, 40025, "location does not exist")
			return false
		} else if err != nil {
			respondError(ctx, err, "load location")
			return false
		}
	}

	post.Title = title
	post.Text = text
	post.PubDate = pubDate
	post.CategoryID = &category.ID
	post.Category = category
	post.LocationID = nil
	post.Location = location
	if location != nil {
		post.LocationID = &location.ID
	}
	if form.ClearImage {
		post.Image = ""
		post.ImageKey = ""
	}
	return true
}

// attachImage stores an optional multipart "image" upload on post.
func (p *PostController) attachImage(ctx *gin.Context, post *models.Post) bool {
	header, err := ctx.FormFile("image")
	if err != nil {
		// no multipart body or no file part
		return true
	}
	maxBytes := int64(p.cfg.MaxImageSizeMB) << 20
	obj, err := storage.SaveImage(ctx.Request.Context(), p.storage, header, maxBytes, middleware.RequestTime(ctx))
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		badRequest(ctx, 40026, "image is too large")
		return false
	case errors.Is(err, storage.ErrNotImage):
		badRequest(ctx, 40027, "file is not an image")
		return false
	case err != nil:
		respondError(ctx, err, "store image")
		return false
	}
	post.Image = obj.URL
	post.ImageKey = obj.Key
	return true
}

func (p *PostController) discardImage(key string) {
	if key == "" || p.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.storage.Delete(ctx, key); err != nil {
		utils.Logger.Warn("image not removed", zap.String("key", key), zap.Error(err))
	}
}

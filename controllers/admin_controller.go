package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

// AdminController manages categories, locations, publication flags and accounts.
type AdminController struct {
	repos *repository.Repositories
	cache *utils.Cache
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(repos *repository.Repositories, cache *utils.Cache) *AdminController {
	return &AdminController{repos: repos, cache: cache}
}

type categoryRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Slug        string `form:"slug" json:"slug"`
	IsPublished *bool  `form:"is_published" json:"is_published"`
}

type locationRequest struct {
	Name        string `form:"name" json:"name"`
	IsPublished *bool  `form:"is_published" json:"is_published"`
}

func publishedOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// ListCategories returns every category, published or not.
func (a *AdminController) ListCategories(ctx *gin.Context) {
	items, err := a.repos.Categories.List()
	if err != nil {
		respondError(ctx, err, "list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

func (a *AdminController) bindCategory(ctx *gin.Context, c *models.Category) bool {
	var req categoryRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, 40060, "invalid request payload")
		return false
	}
	title := utils.SanitizePlain(req.Title)
	if title == "" || len([]rune(title)) > 256 {
		badRequest(ctx, 40061, "title must be 1-256 characters")
		return false
	}
	if !models.ValidSlug(req.Slug) || len(req.Slug) > 64 {
		badRequest(ctx, 40062, "slug may contain only latin letters, digits, hyphen and underscore")
		return false
	}
	c.Title = title
	c.Description = utils.Sanitize(req.Description)
	c.Slug = req.Slug
	if req.IsPublished != nil || c.ID == 0 {
		c.IsPublished = publishedOrDefault(req.IsPublished)
	}
	return true
}

// CreateCategory adds a category; a taken slug is 409.
func (a *AdminController) CreateCategory(ctx *gin.Context) {
	var c models.Category
	if !a.bindCategory(ctx, &c) {
		return
	}
	if err := a.repos.Categories.Create(&c); err != nil {
		respondError(ctx, err, "create category")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"category": c})
}

// UpdateCategory rewrites a category.
func (a *AdminController) UpdateCategory(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	c, err := a.repos.Categories.FindByID(id)
	if err != nil {
		respondError(ctx, err, "load category")
		return
	}
	if !a.bindCategory(ctx, c) {
		return
	}
	if err := a.repos.Categories.Update(c); err != nil {
		respondError(ctx, err, "update category")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"category": c})
}

// DeleteCategory removes a category; its posts lose their category.
func (a *AdminController) DeleteCategory(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := a.repos.Categories.Delete(id); err != nil {
		respondError(ctx, err, "delete category")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

// ListLocations returns every location.
func (a *AdminController) ListLocations(ctx *gin.Context) {
	items, err := a.repos.Locations.List()
	if err != nil {
		respondError(ctx, err, "list locations")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

func (a *AdminController) bindLocation(ctx *gin.Context, l *models.Location) bool {
	var req locationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, 40063, "invalid request payload")
		return false
	}
	name := utils.SanitizePlain(req.Name)
	if name == "" || len([]rune(name)) > 256 {
		badRequest(ctx, 40064, "name must be 1-256 characters")
		return false
	}
	l.Name = name
	if req.IsPublished != nil || l.ID == 0 {
		l.IsPublished = publishedOrDefault(req.IsPublished)
	}
	return true
}

// CreateLocation adds a location.
func (a *AdminController) CreateLocation(ctx *gin.Context) {
	var l models.Location
	if !a.bindLocation(ctx, &l) {
		return
	}
	if err := a.repos.Locations.Create(&l); err != nil {
		respondError(ctx, err, "create location")
		return
	}
	utils.Success(ctx, gin.H{"location": l})
}

// UpdateLocation rewrites a location.
func (a *AdminController) UpdateLocation(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	l, err := a.repos.Locations.FindByID(id)
	if err != nil {
		respondError(ctx, err, "load location")
		return
	}
	if !a.bindLocation(ctx, l) {
		return
	}
	if err := a.repos.Locations.Update(l); err != nil {
		respondError(ctx, err, "update location")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"location": l})
}

// DeleteLocation removes a location; its posts lose their location.
func (a *AdminController) DeleteLocation(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := a.repos.Locations.Delete(id); err != nil {
		respondError(ctx, err, "delete location")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"message": "location deleted"})
}

// SetPostPublished sets or toggles a post's is_published flag. Without a body
// the flag is inverted.
func (a *AdminController) SetPostPublished(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	post, err := a.repos.Posts.FindByID(id)
	if err != nil {
		respondError(ctx, err, "load post")
		return
	}
	var req struct {
		IsPublished *bool `form:"is_published" json:"is_published"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBind(&req); err != nil {
			badRequest(ctx, 40065, "invalid request payload")
			return
		}
	}
	published := !post.IsPublished
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	if err := a.repos.Posts.SetPublished(post.ID, published); err != nil {
		respondError(ctx, err, "publish post")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"id": post.ID, "is_published": published})
}

// DeleteUser removes an account with its posts and comments.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := a.repos.Users.Delete(id); err != nil {
		respondError(ctx, err, "delete user")
		return
	}
	a.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

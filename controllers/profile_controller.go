package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

// ProfileController serves user profiles and the profile edit form.
type ProfileController struct {
	repos *repository.Repositories
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(repos *repository.Repositories) *ProfileController {
	return &ProfileController{repos: repos}
}

type profileForm struct {
	Username  string `form:"username" json:"username" binding:"required"`
	FirstName string `form:"first_name" json:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" json:"last_name" binding:"max=150"`
	Email     string `form:"email" json:"email" binding:"omitempty,email,max=254"`
}

func profileFormOf(u *models.User) gin.H {
	return gin.H{
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
	}
}

// Profile shows a user and their posts. The owner sees every post they wrote;
// other visitors see only publicly visible ones.
func (p *ProfileController) Profile(ctx *gin.Context) {
	profile, err := p.repos.Users.FindByUsername(ctx.Param("username"))
	if err != nil {
		respondError(ctx, err, "load profile")
		return
	}
	owner := middleware.CurrentUserID(ctx) == profile.ID
	page, err := p.repos.Posts.ListByAuthor(profile.ID, owner, middleware.RequestTime(ctx), ctx.Query("page"))
	if err != nil {
		respondError(ctx, err, "list profile posts")
		return
	}
	utils.Success(ctx, gin.H{
		"profile":   profile,
		"full_name": profile.FullName(),
		"is_owner":  owner,
		"page":      page,
	})
}

// EditProfileForm returns the requester's editable fields.
func (p *ProfileController) EditProfileForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"form": profileFormOf(middleware.CurrentUser(ctx))})
}

// UpdateProfile saves the requester's own record and redirects to the profile.
func (p *ProfileController) UpdateProfile(ctx *gin.Context) {
	var form profileForm
	if err := ctx.ShouldBind(&form); err != nil {
		badRequest(ctx, 40050, "invalid profile data")
		return
	}
	username := strings.TrimSpace(form.Username)
	if !models.ValidUsername(username) {
		badRequest(ctx, 40051, "username may contain only letters, digits and @.+-_")
		return
	}

	updated := *middleware.CurrentUser(ctx)
	updated.Username = username
	updated.FirstName = strings.TrimSpace(form.FirstName)
	updated.LastName = strings.TrimSpace(form.LastName)
	updated.Email = strings.TrimSpace(form.Email)
	if err := p.repos.Users.UpdateProfile(&updated); err != nil {
		respondError(ctx, err, "update profile")
		return
	}
	utils.Redirect(ctx, profileURL(updated.Username), gin.H{"profile": profileFormOf(&updated)})
}

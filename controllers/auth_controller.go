package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

// AuthController issues and revokes tokens for local accounts.
type AuthController struct {
	users     *repository.UserRepository
	tokens    *utils.TokenService
	blacklist *utils.TokenBlacklist
	cfg       config.AppConfig
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users *repository.UserRepository, tokens *utils.TokenService, blacklist *utils.TokenBlacklist, cfg config.AppConfig) *AuthController {
	return &AuthController{users: users, tokens: tokens, blacklist: blacklist, cfg: cfg}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Email    string `form:"email" json:"email" binding:"omitempty,email,max=254"`
		Password string `form:"password" json:"password" binding:"required"`
		Confirm  string `form:"confirm" json:"confirm"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, 40001, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !models.ValidUsername(username) {
		badRequest(ctx, 40002, "username may contain only letters, digits and @.+-_")
		return
	}
	if req.Confirm != "" && req.Password != req.Confirm {
		badRequest(ctx, 40003, "passwords do not match")
		return
	}
	if len(req.Password) < utils.MinPasswordLength {
		badRequest(ctx, 40004, "password is too short")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(ctx, err, "hash password")
		return
	}
	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := a.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			utils.Conflict(ctx, "username already exists")
			return
		}
		respondError(ctx, err, "create user")
		return
	}

	a.issue(ctx, user)
}

// Login verifies credentials and issues a JWT, also set as a cookie together
// with the csrf cookie browser forms must echo.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, 40005, "invalid request payload")
		return
	}

	user, err := a.users.FindByUsername(strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(ctx, err, "load user")
		return
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	a.issue(ctx, user)
}

func (a *AuthController) issue(ctx *gin.Context, user *models.User) {
	token, err := a.tokens.Generate(user.ID, user.Username)
	if err != nil {
		respondError(ctx, err, "generate token")
		return
	}
	csrf := middleware.NewCSRFToken()
	maxAge := int(a.tokens.TTL() / time.Second)
	secure := ctx.Request.TLS != nil

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", secure, true)
	ctx.SetCookie(middleware.CSRFCookie, csrf, maxAge, "/", "", secure, false)

	utils.Success(ctx, gin.H{
		"token":      token,
		"csrf_token": csrf,
		"user":       a.userResponse(user),
		"next":       safeNext(ctx.Query("next")),
	})
}

// Logout revokes the presented token until it would have expired and clears cookies.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := ctx.GetString(middleware.ContextTokenKey); token != "" {
		expiresAt := time.Now().Add(a.tokens.TTL())
		if claims, err := a.tokens.Parse(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		a.blacklist.Revoke(token, expiresAt)
	}
	ctx.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	ctx.SetCookie(middleware.CSRFCookie, "", -1, "/", "", false, false)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	utils.Success(ctx, a.userResponse(middleware.CurrentUser(ctx)))
}

// LoginPage is where unauthenticated requests to protected pages are sent.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"next":    safeNext(ctx.Query("next")),
		"message": "POST username and password to " + a.cfg.LoginURL,
	})
}

func (a *AuthController) userResponse(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"is_admin":   a.cfg.IsAdmin(user.Username),
	}
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

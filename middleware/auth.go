package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

const (
	// ContextUserKey stores the authenticated *models.User in Gin context.
	ContextUserKey = "user"
	// ContextTokenKey stores the raw bearer token of the request.
	ContextTokenKey = "token"
	// ContextCookieAuthKey is set when the identity came from the token cookie.
	ContextCookieAuthKey = "cookie_auth"

	// TokenCookie carries the JWT for browser clients.
	TokenCookie = "token"
)

// UserFinder loads the account behind a token.
type UserFinder interface {
	FindByID(id uint) (*models.User, error)
}

// Authenticate resolves an optional identity from the Authorization header or the
// token cookie. It never rejects; guards further down the chain decide.
func Authenticate(tokens *utils.TokenService, blacklist *utils.TokenBlacklist, users UserFinder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, viaCookie := extractToken(ctx)
		if tokenString == "" || blacklist.IsRevoked(tokenString) {
			ctx.Next()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			ctx.Next()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil {
			// deleted account or store failure, treat as anonymous
			utils.Logger.Debug("token user not loaded", zap.Uint("user_id", claims.UserID), zap.Error(err))
			ctx.Next()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextTokenKey, tokenString)
		if viaCookie {
			ctx.Set(ContextCookieAuthKey, true)
		}
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) (string, bool) {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), false
		}
		return "", false
	}
	if cookie, err := ctx.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(ctx *gin.Context) *models.User {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(ctx *gin.Context) uint {
	if user := CurrentUser(ctx); user != nil {
		return user.ID
	}
	return 0
}

// LoginRequired sends anonymous requests to the login flow with the original
// path in ?next=.
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if CurrentUser(ctx) != nil {
			ctx.Next()
			return
		}
		target := loginURL + "?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
		utils.Redirect(ctx, target, nil)
		ctx.Abort()
	}
}

// AdminRequired hides admin routes from everyone but configured admins.
func AdminRequired(cfg config.AppConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := CurrentUser(ctx)
		if user == nil || !cfg.IsAdmin(user.Username) {
			utils.NotFound(ctx)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

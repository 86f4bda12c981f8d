package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/blogicum/utils"
)

const (
	// CSRFCookie holds the double-submit token issued at login.
	CSRFCookie = "csrf_token"
	// CSRFHeader must echo CSRFCookie on unsafe cookie-authenticated requests.
	CSRFHeader = "X-CSRF-Token"
)

// NewCSRFToken returns a fresh random token for the csrf cookie.
func NewCSRFToken() string {
	return uuid.NewString()
}

// CSRFProtect rejects unsafe requests authenticated by cookie unless the
// X-CSRF-Token header matches the csrf_token cookie. Bearer clients are exempt.
func CSRFProtect() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if safeMethod(ctx.Request.Method) || !ctx.GetBool(ContextCookieAuthKey) {
			ctx.Next()
			return
		}
		cookie, err := ctx.Cookie(CSRFCookie)
		header := ctx.GetHeader(CSRFHeader)
		if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.Forbidden(ctx, "CSRF verification failed")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes for the distinct error pages.
const (
	CodeNotFound  = 40400
	CodeForbidden = 40300
	CodeConflict  = 40900
	CodeInternal  = 50000
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// Redirect answers a completed form submission with 303 See Other.
// The envelope repeats the target for clients that do not follow redirects.
func Redirect(ctx *gin.Context, location string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["redirect"] = location
	ctx.Header("Location", location)
	Respond(ctx, http.StatusSeeOther, 0, "redirect", data)
}

// NotFound renders the 404 page. Hidden and missing records look the same.
func NotFound(ctx *gin.Context) {
	Error(ctx, http.StatusNotFound, CodeNotFound, "page not found")
}

// Forbidden renders the 403 page.
func Forbidden(ctx *gin.Context, reason string) {
	if reason == "" {
		reason = "forbidden"
	}
	Error(ctx, http.StatusForbidden, CodeForbidden, reason)
}

// Conflict reports a unique value that is already taken.
func Conflict(ctx *gin.Context, message string) {
	Error(ctx, http.StatusConflict, CodeConflict, message)
}

// InternalError renders the 500 page.
func InternalError(ctx *gin.Context) {
	Error(ctx, http.StatusInternalServerError, CodeInternal, "internal server error")
}

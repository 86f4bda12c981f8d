package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

// paramID parses a positive numeric path parameter. Anything else is a 404.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.NotFound(ctx)
		return 0, false
	}
	return uint(id), true
}

// respondError maps repository errors onto the error pages and logs the rest.
func respondError(ctx *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFound(ctx)
	case errors.Is(err, repository.ErrConflict):
		utils.Conflict(ctx, "already exists")
	default:
		utils.Logger.Error(op, zap.Error(err), zap.String("path", ctx.Request.URL.Path))
		utils.InternalError(ctx)
	}
}

func badRequest(ctx *gin.Context, code int, message string) {
	utils.Error(ctx, http.StatusBadRequest, code, message)
}

var pubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parsePubDate accepts RFC 3339 and the datetime-local formats browsers send.
// Values without an offset are read as UTC. Empty means fallback.
func parsePubDate(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username)
}

package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

const contextCommentKey = "comment"

// CommentController handles comment creation and the author's edit/delete forms.
type CommentController struct {
	repos *repository.Repositories
	cache *utils.Cache
	cfg   config.AppConfig
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(repos *repository.Repositories, cache *utils.Cache, cfg config.AppConfig) *CommentController {
	return &CommentController{repos: repos, cache: cache, cfg: cfg}
}

type commentForm struct {
	Text string `form:"text" json:"text"`
}

func bindCommentText(ctx *gin.Context) (string, bool) {
	var form commentForm
	if err := ctx.ShouldBind(&form); err != nil {
		badRequest(ctx, 40040, "invalid request payload")
		return "", false
	}
	text := utils.Sanitize(form.Text)
	if text == "" {
		badRequest(ctx, 40041, "comment cannot be empty")
		return "", false
	}
	return text, true
}

// AddComment attaches a comment to a post the requester may see.
func (c *CommentController) AddComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	user := middleware.CurrentUser(ctx)
	post, err := c.repos.Posts.FindForViewer(postID, user.ID, middleware.RequestTime(ctx))
	if err != nil {
		respondError(ctx, err, "load post")
		return
	}
	text, ok := bindCommentText(ctx)
	if !ok {
		return
	}

	comment := &models.Comment{Text: text, PostID: post.ID, AuthorID: user.ID}
	if err := c.repos.Comments.Create(comment); err != nil {
		respondError(ctx, err, "create comment")
		return
	}
	c.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Redirect(ctx, postURL(post.ID), gin.H{"comment": comment})
}

// RequireAuthor loads the comment into the context when the requester wrote it,
// or, with allowAdmin, when the requester is an admin. Everything else is 404.
func (c *CommentController) RequireAuthor(allowAdmin bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		postID, ok := paramID(ctx, "id")
		if !ok {
			ctx.Abort()
			return
		}
		commentID, ok := paramID(ctx, "cid")
		if !ok {
			ctx.Abort()
			return
		}
		user := middleware.CurrentUser(ctx)
		if user == nil {
			utils.NotFound(ctx)
			ctx.Abort()
			return
		}

		var (
			comment *models.Comment
			err     error
		)
		if allowAdmin && c.cfg.IsAdmin(user.Username) {
			comment, err = c.repos.Comments.FindInPost(commentID, postID)
		} else {
			comment, err = c.repos.Comments.FindOwned(commentID, postID, user.ID)
		}
		if err != nil {
			respondError(ctx, err, "load comment")
			ctx.Abort()
			return
		}
		ctx.Set(contextCommentKey, comment)
		ctx.Next()
	}
}

func guardedComment(ctx *gin.Context) *models.Comment {
	comment, _ := ctx.MustGet(contextCommentKey).(*models.Comment)
	return comment
}

// EditCommentForm returns the comment populated into the form.
func (c *CommentController) EditCommentForm(ctx *gin.Context) {
	comment := guardedComment(ctx)
	utils.Success(ctx, gin.H{"form": gin.H{"text": comment.Text}, "comment": comment})
}

// UpdateComment rewrites the comment text.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	comment := guardedComment(ctx)
	text, ok := bindCommentText(ctx)
	if !ok {
		return
	}
	if err := c.repos.Comments.UpdateText(comment, text); err != nil {
		respondError(ctx, err, "update comment")
		return
	}
	utils.Redirect(ctx, postURL(comment.PostID), gin.H{"comment": comment})
}

// DeleteCommentForm returns the comment for confirmation.
func (c *CommentController) DeleteCommentForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"comment": guardedComment(ctx)})
}

// DeleteComment removes the comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	comment := guardedComment(ctx)
	if err := c.repos.Comments.Delete(comment.ID); err != nil {
		respondError(ctx, err, "delete comment")
		return
	}
	c.cache.InvalidateByPrefix(postsCachePrefix)
	utils.Redirect(ctx, postURL(comment.PostID), nil)
}

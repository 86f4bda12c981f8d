package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/utils"
)

// StatsController provides blog statistics.
type StatsController struct {
	repos *repository.Repositories
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(repos *repository.Repositories) *StatsController {
	return &StatsController{repos: repos}
}

// GetStats returns aggregate counts. Only publicly visible posts are counted.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userCount, err := s.repos.Users.Count()
	if err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	postCount, err := s.repos.Posts.CountVisible(middleware.RequestTime(ctx))
	if err != nil {
		postCount = 0
	}

	commentCount, err := s.repos.Comments.Count()
	if err != nil {
		commentCount = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"post_count":    postCount,
		"comment_count": commentCount,
	})
}

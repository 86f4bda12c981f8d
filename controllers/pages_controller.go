package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/utils"
)

// PagesController serves the static informational pages configured in config.json.
type PagesController struct {
	cfg config.AppConfig
}

func NewPagesController(cfg config.AppConfig) *PagesController { return &PagesController{cfg: cfg} }

// About returns the "about the project" page.
func (p *PagesController) About(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"title": p.cfg.AboutTitle,
		"html":  p.cfg.AboutHTML,
	})
}

// Rules returns the site rules page.
func (p *PagesController) Rules(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"title": p.cfg.RulesTitle,
		"html":  p.cfg.RulesHTML,
	})
}

// Health reports liveness.
func (p *PagesController) Health(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"status": "ok"})
}

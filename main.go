package main

import (
	"log"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/routes"
	"github.com/cppla/blogicum/storage"
	"github.com/cppla/blogicum/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		utils.Sugar.Fatalf("database: %v", err)
	}

	rc := utils.NewRedis(cfg)
	st, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("storage: %v", err)
	}

	r := routes.SetupRouter(routes.Dependencies{
		Config:    cfg,
		Repos:     repository.New(db),
		Storage:   st,
		Cache:     utils.NewCache(rc, cfg.CacheTTL),
		Tokens:    utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		Blacklist: utils.NewTokenBlacklist(rc),
	})

	cleanup := func() {
		if rc != nil {
			_ = rc.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cleanup); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

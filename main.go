package main

import (
	"time"

	"github.com/feedline/feedline/cache"
	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/models"
	"github.com/feedline/feedline/routes"
	"github.com/feedline/feedline/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.Like{},
		&models.PageView{},
	)

	// Page cache: Redis when configured, in-process fallback otherwise.
	var pages cache.PageCache
	if cfg.RedisHost != "" {
		pages = cache.NewRedisCache(cfg)
	} else {
		pages = cache.NewMemoryCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	}

	r := routes.SetupRouter(db, pages)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

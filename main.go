package main

import (
	"quickblog/config"
	"quickblog/models"
	"quickblog/providers"
	"quickblog/routes"
	"quickblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(cfg, &models.Blog{}, &models.Comment{})

	cache := utils.NewCache(cfg)
	images := providers.NewImageKit(cfg)
	ai := providers.NewGemini(cfg)

	r := routes.SetupRouter(db, cfg, cache, images, ai)

	utils.Sugar.Infof("Starting server on port %s", cfg.AppPort)
	if err := utils.RunServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

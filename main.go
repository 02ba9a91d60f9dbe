package main

import (
	"fmt"
	"log"

	"github.com/LeoAkay/qr-menu-sub000/configs"
	"github.com/LeoAkay/qr-menu-sub000/middlewares"
	"github.com/LeoAkay/qr-menu-sub000/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// DB
	configs.ConnectionDB(cfg)
	db := configs.DB()

	// migrate
	configs.SetupDatabase()

	if err := configs.SeedAdmin(); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}

	// redis cache (optional)
	cache := configs.NewRedisClient(cfg)

	// HTTP
	r := gin.Default()

	r.Use(middlewares.CORSMiddleware())

	// Serve uploaded files (PDF menus, item images)
	r.Static("/uploads", cfg.UploadDir)

	// Register API routes + order hub
	hub := routes.RegisterRoutes(r, db, cfg, cache)
	go hub.Run()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Println("server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

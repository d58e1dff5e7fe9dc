// Package main is the API server entry point. It connects PostgreSQL and
// Redis, wires the dependency graph and serves HTTP until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paylink/internal/config"
	"paylink/internal/repositories"
	"paylink/internal/repositories/cache"
	"paylink/internal/routes"
	"paylink/internal/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database instance: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("failed to close database connection: %v", err)
		}
	}()

	// Redis is optional: without it the idempotency fast path and wallet
	// cache are skipped, correctness does not depend on it.
	var cacheSvc *cache.Service
	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis unavailable, running without cache: %v", err)
		_ = redisClient.Close()
	} else {
		cacheSvc = cache.NewService(redisClient, config.GetDurationEnv("CACHE_TTL", 5*time.Minute))
		defer func() {
			if err := cacheSvc.Close(); err != nil {
				log.Printf("failed to close redis connection: %v", err)
			}
		}()
	}
	cancel()

	app := fiber.New(fiber.Config{
		AppName:      "paylink",
		ReadTimeout:  config.GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: config.GetDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        config.GetIntEnv("AUTH_RATE_LIMIT", 5),
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many requests, please try again later",
				})
			},
		}))
	}

	services := routes.SetupRoutes(app, db, cacheSvc)
	defer services.Audit.Close()

	reset := scheduler.NewDailyReset(services.Wallet, nil)
	reset.Start()
	defer reset.Stop()

	go func() {
		if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

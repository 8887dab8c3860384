package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"schoolfit_backend/internals/configs"
	database "schoolfit_backend/internals/databases"
	"schoolfit_backend/internals/features/fitness/grading"
	fileService "schoolfit_backend/internals/features/school/files/service"
	middlewares "schoolfit_backend/internals/middlewares"
	routes "schoolfit_backend/internals/route"
	"schoolfit_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               20 * 1024 * 1024, // whole-school xlsx exports
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	// Grading tables are configuration: a broken seed must stop the
	// process, not surface per row.
	tables, err := grading.Load()
	if err != nil {
		log.Fatalf("load grading tables: %v", err)
	}
	if err := seeds.Run(database.DB, tables); err != nil {
		log.Fatalf("seed: %v", err)
	}

	storage, err := fileService.NewOSSStorageFromEnv("uploads")
	if err != nil {
		log.Fatalf("init file storage: %v", err)
	}
	queue := fileService.NewTaskQueue(16)
	reaper := fileService.StartStaleJobReaper(database.DB)

	routes.SetupRoutes(app, database.DB, routes.Deps{
		Tables:  tables,
		Storage: storage,
		Queue:   queue,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	// Let queued ingestion jobs finish before the DB goes away.
	reaper.Stop()
	if err := queue.Shutdown(ctx); err != nil {
		log.Printf("queue shutdown: %v", err)
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/cache"
	"github.com/vivaarte/vivaarte/internal/pkg/database"
	"github.com/vivaarte/vivaarte/internal/pkg/env"
	"github.com/vivaarte/vivaarte/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := newFiberApp(findBasePath())

	// ROUTER
	router.InstallRouter(app)

	return app
}

// findBasePath locates the project root by probing for the views directory
func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/vivaarte to project root
		"../../../", // Fallback
	}

	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			return path
		}
	}

	panic("Could not find project root directory")
}

func newFiberApp(basePath string) *fiber.App {
	app := fiber.New(fiber.Config{
		Views: html.New(basePath+"views", ".html"),
	})

	// swallow favicon requests; no icon asset is shipped
	app.Use(favicon.New(favicon.Config{
		URL: "/favicon.ico",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	return app
}

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/webdesk/backend/internal/config"
	"github.com/webdesk/backend/internal/database"
	"github.com/webdesk/backend/internal/handlers"
	"github.com/webdesk/backend/internal/middleware"
	"github.com/webdesk/backend/internal/services"
	"github.com/webdesk/backend/pkg/logger"
	"github.com/webdesk/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	namingService := services.NewNamingService(db)
	transferService := services.NewTransferService(db, namingService)

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db)
	foldersHandler := handlers.NewFoldersHandler(db, namingService)
	filesHandler := handlers.NewFilesHandler(db, namingService)
	windowsHandler := handlers.NewWindowsHandler(db)
	messagesHandler := handlers.NewMessagesHandler(db, transferService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	api.Get("/users/search", authMiddleware.RequireAuth, usersHandler.Search)

	folderRoutes := api.Group("/folders", authMiddleware.RequireAuth)
	folderRoutes.Post("/", foldersHandler.Create)
	folderRoutes.Get("/", foldersHandler.List)
	folderRoutes.Get("/root", foldersHandler.ListRoot)
	folderRoutes.Get("/:id/contents", foldersHandler.Contents)
	folderRoutes.Get("/:id", foldersHandler.Get)
	folderRoutes.Put("/:id", foldersHandler.Update)
	folderRoutes.Delete("/:id", foldersHandler.Delete)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", filesHandler.Create)
	fileRoutes.Get("/", filesHandler.List)
	fileRoutes.Get("/desktop", filesHandler.ListDesktop)
	fileRoutes.Post("/:id/rename", filesHandler.Rename)
	fileRoutes.Post("/:id/position", filesHandler.UpdatePosition)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Put("/:id", filesHandler.Update)
	fileRoutes.Delete("/:id", filesHandler.Delete)

	windowRoutes := api.Group("/windows", authMiddleware.RequireAuth)
	windowRoutes.Post("/", windowsHandler.Create)
	windowRoutes.Get("/", windowsHandler.List)
	windowRoutes.Post("/:id/position", windowsHandler.UpdatePosition)
	windowRoutes.Post("/:id/front", windowsHandler.BringToFront)
	windowRoutes.Put("/:id", windowsHandler.Update)
	windowRoutes.Delete("/:id", windowsHandler.Delete)

	messageRoutes := api.Group("/messages", authMiddleware.RequireAuth)
	messageRoutes.Post("/", messagesHandler.Create)
	messageRoutes.Get("/", messagesHandler.List)
	messageRoutes.Get("/inbox", messagesHandler.Inbox)
	messageRoutes.Get("/sent", messagesHandler.Sent)
	messageRoutes.Post("/:id/read", messagesHandler.MarkRead)
	messageRoutes.Post("/:id/attachments/:attachmentId/copy", messagesHandler.CopyAttachment)
	messageRoutes.Get("/:id", messagesHandler.Get)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}

package app

import (
	"database/sql"
	"fmt"
	"log"

	"dobtasks/internal/config"
	"dobtasks/internal/handlers"
	"dobtasks/internal/middleware"
	"dobtasks/internal/pdf"
	"dobtasks/internal/repositories"
	"dobtasks/internal/routes"
	"dobtasks/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.Auth.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.Auth.JWTSecret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	departmentRepo := repositories.NewDepartmentRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken)
	notificationService := services.NewNotificationService(emailService, telegramService, userRepo)

	userService := services.NewUserService(userRepo, authService)
	taskService := services.NewTaskService(taskRepo, userRepo)
	resetService := services.NewPasswordResetService(userRepo, emailService, authService)
	reminderService := services.NewReminderService(taskRepo, emailService)
	reportService := services.NewReportService(taskRepo)

	pdfGen := pdf.NewReportGenerator("DOB Task Manager")

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	userHandler := handlers.NewUserHandler(userService, settingRepo)
	taskHandler := handlers.NewTaskHandler(taskService, notificationService, reminderService)
	departmentHandler := handlers.NewDepartmentHandler(departmentRepo)
	settingHandler := handlers.NewSettingHandler(settingRepo)
	reportHandler := handlers.NewReportHandler(reportService, pdfGen)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestID())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		taskHandler,
		departmentHandler,
		settingHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

package main

import (
	"log"
	"os"

	_ "proptax/api/swagger" // swagger docs
	"proptax/internal/database"
	"proptax/internal/handler"
	"proptax/internal/logger"
	"proptax/internal/middleware"
	"proptax/internal/repository"
	"proptax/internal/service"
	"proptax/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Property Tax Rule Engine API
// @version         1.0
// @description     Declarative tax-rule evaluation service with rule, category and config management.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	zapLogger, err := logger.New(os.Getenv("GIN_MODE") != "release")
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer zapLogger.Sync()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	zapLogger.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	ruleRepo := repository.NewTaxRuleRepository(db)
	configRepo := repository.NewTaxConfigRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo)
	ruleService := service.NewTaxRuleService(ruleRepo, auditRepo, txManager, wsHub)
	configService := service.NewTaxConfigService(configRepo, auditRepo, wsHub)
	evalService := service.NewEvaluationService(ruleRepo, configRepo, auditRepo, zapLogger)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	ruleHandler := handler.NewTaxRuleHandler(ruleService)
	configHandler := handler.NewTaxConfigHandler(configService)
	evalHandler := handler.NewEvaluationHandler(evalService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	ruleHandler.RegisterRoutes(router.Group(""))
	configHandler.RegisterRoutes(router.Group(""))
	evalHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zapLogger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guinanlin/rongguan-erp/internal/config"
	erpEntity "github.com/guinanlin/rongguan-erp/internal/erp/entity"
	erpHandler "github.com/guinanlin/rongguan-erp/internal/erp/handler"
	erpRepo "github.com/guinanlin/rongguan-erp/internal/erp/repository"
	erpService "github.com/guinanlin/rongguan-erp/internal/erp/service"
	"github.com/guinanlin/rongguan-erp/internal/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting rg-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// AutoMigrate ERP tables
	if err := erpEntity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate ERP tables", zap.Error(err))
	}
	zapLogger.Info("ERP database migration completed")

	// 初始化 Redis（BOM展开结果缓存），不可用时降级为直查
	cache := initRedis(cfg.Redis)
	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, explode cache disabled", zap.Error(err))
			cache = nil
		}
		cancel()
	}

	// 初始化 ERP 依赖
	repos := erpRepo.NewRepositories(db)
	services := erpService.NewServices(repos, cache, zapLogger, cfg.Attribute.ColorTag, cfg.Attribute.SizeTag)
	handlers := erpHandler.NewHandlers(services)

	// 确定端口
	port := os.Getenv("ERP_PORT")
	if port == "" {
		port = fmt.Sprintf("%d", cfg.Server.Port)
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "rg-erp"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "rg-erp"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "rg-erp",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// ERP API v1
	v1 := router.Group("/api/v1/erp")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 订单链
		orders := v1.Group("/orders")
		{
			orders.POST("", handlers.Order.CreateChain)
		}

		// 生产订单
		productionOrders := v1.Group("/production-orders")
		{
			productionOrders.GET("", handlers.Order.ListProductionOrders)
			productionOrders.GET("/materials", handlers.Order.ListMaterials)
			productionOrders.GET("/:id", handlers.Order.GetProductionOrder)
		}

		// BOM 版本
		boms := v1.Group("/boms")
		{
			boms.POST("", handlers.BOM.Create)
			boms.POST("/bulk", handlers.BOM.BulkCreate)
			boms.GET("/:id/explode", handlers.BOM.Explode)
			boms.GET("/:id/explode/export", handlers.BOM.ExportExplosion)
		}

		// 款号
		items := v1.Group("/items")
		{
			items.GET("/:code/bom-summary", handlers.BOM.StructureSummary)
		}

		// 生产工单
		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", handlers.WorkOrder.List)
			workOrders.POST("", handlers.WorkOrder.Create)
			workOrders.POST("/batch", handlers.WorkOrder.BatchCreate)
			workOrders.GET("/:id", handlers.WorkOrder.Get)
			workOrders.POST("/:id/assign", handlers.WorkOrder.Assign)
		}

		// 物料申请
		materialRequests := v1.Group("/material-requests")
		{
			materialRequests.POST("/:id/cancel", handlers.MaterialRequest.Cancel)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("ERP Server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down ERP server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("ERP Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/harborfoods/foodplan/internal/config"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/handler"
	"github.com/harborfoods/foodplan/internal/middleware"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/harborfoods/foodplan/internal/service"
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
	// 本地开发加载.env，生产环境忽略
	_ = godotenv.Load()

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

	zapLogger.Info("Starting foodplan service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, zapLogger, cfg)
	handlers := handler.NewHandlers(services, cfg)

	// 首次部署自动建管理员
	if err := services.Auth.EnsureAdmin(
		config.GetEnvOrDefault("ADMIN_EMAIL", ""),
		config.GetEnvOrDefault("ADMIN_PASSWORD", ""),
	); err != nil {
		zapLogger.Error("Failed to ensure admin account", zap.Error(err))
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

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
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
		Logger: logger.Default.LogMode(logger.Warn),
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
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 物料主数据
			items := authorized.Group("/items")
			{
				items.GET("", h.Item.List)
				items.GET("/all", h.Item.ListAll)
				items.POST("", h.Item.Create)
				items.GET("/:id", h.Item.Get)
				items.PUT("/:id", h.Item.Update)
				items.DELETE("/:id", h.Item.Delete)

				// 配方
				items.GET("/:id/recipe", h.Recipe.Get)
				items.GET("/:id/recipe/weight", h.Recipe.Weight)
				items.POST("/:id/recipe/items", h.Recipe.AddItem)
				items.PUT("/:id/recipe/items/:itemId", h.Recipe.UpdateItem)
				items.DELETE("/:id/recipe/items/:itemId", h.Recipe.DeleteItem)
				items.POST("/:id/recipe/import", h.Recipe.Import)
			}

			// 生产计划
			production := authorized.Group("/schedules/production")
			{
				production.GET("", h.Schedule.ListProduction)
				production.POST("", h.Schedule.CreateProduction)
				production.PUT("/:id", h.Schedule.UpdateProduction)
				production.DELETE("/:id", h.Schedule.DeleteProduction)
			}

			// 灌装计划
			filling := authorized.Group("/schedules/filling")
			{
				filling.GET("", h.Schedule.ListFilling)
				filling.POST("", h.Schedule.CreateFilling)
				filling.PUT("/:id", h.Schedule.UpdateFilling)
				filling.DELETE("/:id", h.Schedule.DeleteFilling)
			}

			// 盘点
			stocktakes := authorized.Group("/stocktakes")
			{
				stocktakes.GET("", h.Stocktake.List)
				stocktakes.POST("", h.Stocktake.Upsert)
			}

			// 库存结余
			inventory := authorized.Group("/inventory")
			{
				inventory.GET("", h.Inventory.List)
				inventory.GET("/export", h.Inventory.Export)
				inventory.PUT("/:id/days/:day", h.Inventory.UpdateDay)
			}

			// 周汇总引擎
			rollup := authorized.Group("/rollup")
			{
				rollup.POST("/run", h.Rollup.Run)
				rollup.GET("/runs", h.Rollup.ListRuns)
				rollup.GET("/usage", h.Rollup.Usage)
				rollup.GET("/usage/preview", h.Rollup.Preview)
			}

			// 一致性校验
			authorized.GET("/validation", h.Validation.Run)
		}
	}
}

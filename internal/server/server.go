package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todolist/internal/auth"
	"todolist/internal/cache"
	"todolist/internal/config"
	"todolist/internal/handler"
	"todolist/internal/middleware"
	"todolist/internal/migrations"
	"todolist/internal/repository"
	"todolist/internal/service"
	"todolist/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	Config    *config.Config
	Telemetry *telemetry.Telemetry
}

// ConfigureLogging sets the logrus level and JSON output.
func ConfigureLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func Init(cfg *config.Config) (*Server, error) {
	ConfigureLogging(cfg.LogLevel)

	tel, err := telemetry.Setup(context.Background(), telemetry.Config{
		Endpoint:    cfg.OTelEndpoint,
		Headers:     cfg.OTelHeaders,
		ServiceName: cfg.OTelServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	if err := migrations.Up(cfg.DSN()); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database")

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable, role cache falls back to the database")
		} else {
			log.WithField("addr", cfg.RedisAddr).Info("connected to redis")
		}
	}

	return &Server{
		Engine:    NewRouter(db, rdb, cfg),
		DB:        db,
		Redis:     rdb,
		Config:    cfg,
		Telemetry: tel,
	}, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine. rdb may be nil.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	cascade := repository.NewCascade(db)
	roles := cache.NewRoleCache(participantRepo, rdb, cfg.RoleCacheTTL)

	// Initialize services
	boardService := service.NewBoardService(boardRepo, participantRepo, userRepo, cascade, roles)
	categoryService := service.NewCategoryService(categoryRepo, boardRepo, cascade, roles)
	goalService := service.NewGoalService(goalRepo, categoryRepo, cascade, roles)
	commentService := service.NewCommentService(commentRepo, goalRepo, roles)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry))
	boardHandler := handler.NewBoardHandler(boardService)
	participantHandler := handler.NewParticipantHandler(boardService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	goalHandler := handler.NewGoalHandler(goalService)
	commentHandler := handler.NewCommentHandler(commentService)

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())
	if cfg.OTelEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.OTelServiceName))
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/core/signup", userHandler.Register)
	r.POST("/core/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/core/profile", userHandler.Profile)
		authorized.PATCH("/core/profile", userHandler.UpdateProfile)
		authorized.PUT("/core/update_password", userHandler.UpdatePassword)

		// Board routes
		authorized.POST("/goals/board/create", boardHandler.Create)
		authorized.GET("/goals/board/list", boardHandler.List)
		authorized.GET("/goals/board/:id", boardHandler.GetByID)
		authorized.PUT("/goals/board/:id", boardHandler.Update)
		authorized.DELETE("/goals/board/:id", boardHandler.Delete)

		// Participant routes
		authorized.GET("/goals/board/:id/participants", participantHandler.List)
		authorized.POST("/goals/board/:id/participants", participantHandler.Add)
		authorized.DELETE("/goals/board/:id/participants/:user_id", participantHandler.Remove)

		// Category routes
		authorized.POST("/goals/goal_category/create", categoryHandler.Create)
		authorized.GET("/goals/goal_category/list", categoryHandler.List)
		authorized.GET("/goals/goal_category/:id", categoryHandler.GetByID)
		authorized.PUT("/goals/goal_category/:id", categoryHandler.Update)
		authorized.DELETE("/goals/goal_category/:id", categoryHandler.Delete)

		// Goal routes
		authorized.POST("/goals/goal/create", goalHandler.Create)
		authorized.GET("/goals/goal/list", goalHandler.List)
		authorized.GET("/goals/goal/:id", goalHandler.GetByID)
		authorized.PUT("/goals/goal/:id", goalHandler.Update)
		authorized.DELETE("/goals/goal/:id", goalHandler.Delete)

		// Comment routes
		authorized.POST("/goals/goal_comment/create", commentHandler.Create)
		authorized.GET("/goals/goal_comment/list", commentHandler.List)
		authorized.GET("/goals/goal_comment/:id", commentHandler.GetByID)
		authorized.PUT("/goals/goal_comment/:id", commentHandler.Update)
		authorized.DELETE("/goals/goal_comment/:id", commentHandler.Delete)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", s.Config.ServerPort).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	if err := s.Telemetry.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("telemetry shutdown failed")
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.WithError(err).Warn("redis close failed")
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server exited properly")
}

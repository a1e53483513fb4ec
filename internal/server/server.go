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

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Boards   *handler.BoardHandler
	Columns  *handler.ColumnHandler
	Tasks    *handler.TaskHandler
	Subtasks *handler.SubtaskHandler
}

func Init(cfg *config.Config) (*Server, error) {
	if cfg.DBMigrate {
		if err := database.Migrate(cfg); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Info("✅ Connected to database")

	rdb := newRedis(cfg)
	boardCache := cache.NewBoardCache(rdb, cfg.CacheTTL)

	// Initialize repositories
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)

	// Initialize handlers
	handlers := Handlers{
		Boards:   handler.NewBoardHandler(boardRepo, boardCache),
		Columns:  handler.NewColumnHandler(columnRepo, boardCache),
		Tasks:    handler.NewTaskHandler(taskRepo, columnRepo, boardCache),
		Subtasks: handler.NewSubtaskHandler(subtaskRepo, boardCache),
	}

	return &Server{
		Engine: NewRouter(cfg, handlers),
		DB:     db,
		Redis:  rdb,
		Config: cfg,
	}, nil
}

// newRedis connects the read cache. Without REDIS_ADDR, or when the server
// does not answer, the API runs uncached.
func newRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("ℹ️  REDIS_ADDR not set, board cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("⚠️  Redis unreachable, board cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Info("✅ Connected to redis")
	return rdb
}

func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.StandardLogger()))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Board routes
	r.GET("/boards", h.Boards.GetAll)
	r.POST("/boards", h.Boards.Create)
	r.PUT("/boards", h.Boards.Update)
	r.PUT("/boards/:id", h.Boards.Clear)
	r.DELETE("/boards/delete/:id", h.Boards.Delete)
	r.DELETE("/boards/reset", h.Boards.Reset)

	// Column routes
	r.GET("/columns/:boardId", h.Columns.GetByBoard)
	r.POST("/boards/:id/columns/reorder", h.Columns.Reorder)

	// Task routes
	r.GET("/tasks/:boardId", h.Tasks.GetByBoard)
	r.POST("/tasks", h.Tasks.Create)
	r.PUT("/tasks", h.Tasks.Update)
	r.PUT("/tasks/change-order", h.Tasks.ChangeOrder)
	r.PUT("/tasks/:id", h.Tasks.ChangeColumn)
	r.DELETE("/tasks/:id", h.Tasks.Delete)

	r.PUT("/subtasks/:id", h.Subtasks.SetCompleted)

	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("✅ Server exited properly")
}

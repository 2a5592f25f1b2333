package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description Constraint-based weekly timetable generation and serving
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	metricsService := service.NewMetricsService()

	facultyRepo := repository.NewFacultyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	timetableRepo := repository.NewTimetableRepository(db).WithObserver(metricsService)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	exportArchive, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export archive directory", "error", err)
	}

	scheduler := engine.New(engine.Config{
		Attempts:         cfg.Scheduler.Attempts,
		AttemptBudget:    cfg.Scheduler.AttemptBudget,
		MinLoad:          cfg.Scheduler.MinLoad,
		MaxLoad:          cfg.Scheduler.MaxLoad,
		MaxSubjectPerDay: cfg.Scheduler.MaxSubjectPerDay,
		SeedBase:         time.Now().UnixNano(),
		Weights: engine.MetricWeights{
			Utilization: cfg.Timetable.UtilizationWeight,
			Balance:     cfg.Timetable.BalanceWeight,
			Room:        cfg.Timetable.RoomWeight,
			Diversity:   cfg.Timetable.DiversityWeight,
		},
	}, nil, logr)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "timetable-api",
	})
	facultyService := service.NewFacultyService(facultyRepo, nil, logr)
	roomService := service.NewRoomService(roomRepo, nil, logr)
	subjectService := service.NewSubjectService(subjectRepo, nil, logr)
	timetableService := service.NewTimetableService(
		facultyRepo, roomRepo, subjectRepo, leaveRepo, timetableRepo,
		cacheRepo, scheduler, exportArchive, metricsService, nil, logr, cfg.Timetable.CacheTTL)
	leaveService := service.NewLeaveService(leaveRepo, facultyRepo, timetableService, nil, logr)

	if cfg.Env != config.EnvProduction {
		seedDefaultAdmin(userRepo, logr)
	}

	authHandler := handler.NewAuthHandler(authService)
	facultyHandler := handler.NewFacultyHandler(facultyService)
	roomHandler := handler.NewRoomHandler(roomService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	timetableHandler := handler.NewTimetableHandler(timetableService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", middleware.JWT(authService), authHandler.Me)

		// The published timetable is viewable without authentication.
		api.GET("/timetable", middleware.OptionalJWT(authService), timetableHandler.GetPublished)
		api.GET("/timetable/export", middleware.OptionalJWT(authService), timetableHandler.Export)

		authed := api.Group("", middleware.JWT(authService))
		admin := middleware.RequireRoles(models.RoleAdmin)

		authed.GET("/faculty", facultyHandler.List)
		authed.POST("/faculty", admin, facultyHandler.Create)
		authed.PUT("/faculty/:id", admin, facultyHandler.Update)
		authed.DELETE("/faculty/:id", admin, facultyHandler.Delete)

		authed.GET("/rooms", roomHandler.List)
		authed.POST("/rooms", admin, roomHandler.Create)
		authed.DELETE("/rooms/:id", admin, roomHandler.Delete)

		authed.GET("/subjects", subjectHandler.List)
		authed.POST("/subjects", admin, subjectHandler.Create)
		authed.DELETE("/subjects/:id", admin, subjectHandler.Delete)

		authed.GET("/leaves", leaveHandler.List)
		authed.POST("/leaves", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty), leaveHandler.Create)
		authed.PUT("/leaves/:id/status", admin, leaveHandler.UpdateStatus)

		authed.GET("/timetable/statistics", timetableHandler.Statistics)
		authed.POST("/timetable/generate", admin, timetableHandler.Generate)
		authed.POST("/timetable/publish", admin, timetableHandler.Publish)
		authed.POST("/timetable/reschedule", admin, timetableHandler.Reschedule)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// seedDefaultAdmin creates the bootstrap admin account for development
// environments so the API is usable on a fresh database.
func seedDefaultAdmin(users *repository.UserRepository, logr *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := users.FindByUsernameAndRole(ctx, "admin", models.RoleAdmin); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logr.Sugar().Warnw("admin lookup failed, skipping seed", "error", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Warnw("failed to hash seed password", "error", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@localhost",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		logr.Sugar().Warnw("failed to seed admin user", "error", err)
		return
	}
	logr.Sugar().Infow("seeded default admin user", "username", admin.Username)
}

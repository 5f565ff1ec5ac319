package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/student-registration-api/api/swagger"
	"github.com/noah-isme/student-registration-api/internal/handler"
	"github.com/noah-isme/student-registration-api/internal/middleware"
	"github.com/noah-isme/student-registration-api/internal/repository"
	"github.com/noah-isme/student-registration-api/internal/service"
	"github.com/noah-isme/student-registration-api/pkg/config"
	"github.com/noah-isme/student-registration-api/pkg/database"
	"github.com/noah-isme/student-registration-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-registration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-registration-api/pkg/middleware/requestid"
)

// @title Student Registration API
// @version 1.0.0
// @description Admin-managed student and course registration back end
// @BasePath /api
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	adminRepo := repository.NewAdminRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	authService := service.NewAuthService(adminRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		Expiration: cfg.JWT.Expiration,
	})
	courseService := service.NewCourseService(courseRepo, nil, logr)
	studentService := service.NewStudentService(studentRepo, courseRepo, nil, logr, cfg.Courses.AutoCreateOnUpdate)
	exportService := service.NewExportService(studentRepo, logr)
	metricsService := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authService)
	courseHandler := handler.NewCourseHandler(courseService)
	studentHandler := handler.NewStudentHandler(studentService, exportService)
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

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := []gin.HandlerFunc{middleware.JWT(authService), middleware.RequireAdmin()}

	course := api.Group("/course", protected...)
	{
		course.POST("/add", courseHandler.Add)
		course.GET("/list", courseHandler.List)
		course.GET("/count", courseHandler.Count)
		course.GET("/:courseCode", courseHandler.Get)
		course.PUT("/update/:courseCode", courseHandler.Update)
		course.PUT("/Softdelete/:courseCode", courseHandler.SoftDelete)
		course.PUT("/Softrestore/:courseCode", courseHandler.SoftRestore)
		course.DELETE("/delete/:courseCode", courseHandler.Delete)
	}

	student := api.Group("/student", protected...)
	{
		student.POST("/register", studentHandler.Register)
		student.GET("/list", studentHandler.List)
		student.GET("/count", studentHandler.Count)
		student.GET("/search", studentHandler.Search)
		if cfg.Exports.Enabled {
			student.GET("/export", studentHandler.Export)
		}
		student.GET("/:studentCode", studentHandler.Get)
		student.PUT("/update/:studentCode", studentHandler.Update)
		student.PUT("/Softdeactivate/:studentCode", studentHandler.SoftDeactivate)
		student.PUT("/Softreactivate/:studentCode", studentHandler.SoftReactivate)
		student.DELETE("/delete/:studentCode", studentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// Package main runs the seat assignment HTTP server with WebSocket fan-out
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/auditorio-asientos/backend/config"
	"github.com/auditorio-asientos/backend/internal/admin"
	"github.com/auditorio-asientos/backend/internal/audit"
	"github.com/auditorio-asientos/backend/internal/export"
	"github.com/auditorio-asientos/backend/internal/invitations"
	"github.com/auditorio-asientos/backend/internal/middleware"
	"github.com/auditorio-asientos/backend/internal/public"
	"github.com/auditorio-asientos/backend/internal/realtime"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/internal/seats"
	"github.com/auditorio-asientos/backend/internal/templates"
	"github.com/auditorio-asientos/backend/pkg/database"
	"github.com/auditorio-asientos/backend/pkg/queue"
	"github.com/auditorio-asientos/backend/pkg/redis"
	"github.com/auditorio-asientos/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := admin.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	auditRepo := audit.NewRepository(pool, logger)

	// Attendee registration and seat claiming
	registroRepo := registros.NewRepository(pool)
	registroHandler := registros.NewHandler(registroRepo, cfg.Cookie, logger)

	policy := seats.NewPolicy(cfg.Seats.SlotCategories)
	seatRepo := seats.NewRepository(pool, policy)
	seatHandler := seats.NewHandler(seatRepo, registroRepo, auditRepo, hub, cfg.Cookie, logger)

	// Token-auth invitation flow (links delivered by mail)
	publicHandler := public.NewHandler(seatRepo, registroRepo, auditRepo, hub, logger)

	// Admin panel
	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, jwtService, logger)
	templateRepo := templates.NewRepository(pool)
	templateHandler := templates.NewHandler(templateRepo, seatRepo, registroRepo, auditRepo, logger)
	invitationRepo := invitations.NewRepository(pool)
	invitationHandler := invitations.NewHandler(invitationRepo, registroRepo, templateRepo, auditRepo, jobQueue, cfg.Mail.Provider, logger)
	exportHandler := export.NewHandler(seatRepo, templateRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		// Attendee session (cookie)
		api.POST("/registro", registroHandler.Register)
		api.POST("/registro/login", registroHandler.Login)
		api.GET("/registro/me", registroHandler.Me)

		api.POST("/asiento/asignar", seatHandler.Asignar)
		api.POST("/asiento/liberar", seatHandler.Liberar)
		api.GET("/asientos", seatHandler.List)

		// Invitation links (bearer token in body/query, no cookie)
		pub := api.Group("/public")
		{
			pub.GET("/invitaciones/validate", publicHandler.Validate)
			pub.POST("/reservar", publicHandler.Reservar)
			pub.POST("/liberar", publicHandler.Liberar)
		}

		api.POST("/admin/login", adminHandler.Login)

		adm := api.Group("/admin")
		adm.Use(middleware.AdminJWT(jwtService))
		{
			adm.GET("/events", templateHandler.List)
			adm.POST("/events", templateHandler.Create)
			adm.GET("/events/:id", templateHandler.Detail)
			adm.DELETE("/events/:id/clean", middleware.RequireRole("super_admin"), templateHandler.Clean)

			adm.POST("/events/:id/invitations/import/preview", invitationHandler.Preview)
			adm.POST("/events/:id/invitations/import/confirm", invitationHandler.Confirm)
			adm.POST("/events/:id/invitations/send", invitationHandler.Send)
			adm.GET("/events/:id/invitations/campaigns", invitationHandler.ListCampaigns)

			adm.GET("/export", exportHandler.Download)
		}
	}

	// WebSocket (template_id in query; read-only viewers)
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"gymbill-service/internal/config"
	"gymbill-service/internal/db"
	analyticsHandler "gymbill-service/internal/handlers/analytics"
	billingHandler "gymbill-service/internal/handlers/billing"
	invoiceHandler "gymbill-service/internal/handlers/invoice"
	tenantHandler "gymbill-service/internal/handlers/tenant"
	"gymbill-service/internal/middleware"
	"gymbill-service/internal/repository/postgres"
	"gymbill-service/internal/scheduler"
	analyticsUsecase "gymbill-service/internal/service/analytics"
	billingUsecase "gymbill-service/internal/service/billing"
	invoiceUsecase "gymbill-service/internal/service/invoice"
	tenantUsecase "gymbill-service/internal/service/tenant"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg       config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	scheduler *scheduler.Scheduler
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- Redis -----
	// Snapshot cache is best effort; the engine runs without it.
	var redisClient *redis.Client
	redisClient, err = db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		log.Printf("[REDIS] unavailable, snapshot caching disabled: %v", err)
		redisClient = nil
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Repositories -----
	tenantRepo := postgres.NewTenantRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	censusRepo := postgres.NewMemberCensusRepository(pool)

	// ----- Services (Usecases) -----
	billingService := billingUsecase.NewBillingService(invoiceRepo, tenantRepo, censusRepo, s.cfg.BillingWorkers, logger)
	invoiceService := invoiceUsecase.NewInvoiceService(invoiceRepo, redisClient, logger)
	tenantService := tenantUsecase.NewTenantService(tenantRepo, s.cfg.StandardRatePerMember, logger)
	analyticsService := analyticsUsecase.NewAnalyticsService(invoiceRepo, tenantRepo, redisClient, logger)

	// ----- Scheduler -----
	if s.cfg.SchedulerEnabled {
		s.scheduler = scheduler.New(billingService, logger)
		if err := s.scheduler.Register(s.cfg.GenerateCron, s.cfg.SweepCron); err != nil {
			return fmt.Errorf("failed to register scheduled jobs: %w", err)
		}
		s.scheduler.Start()
		logger.Info("billing scheduler started",
			zap.String("generate_cron", s.cfg.GenerateCron),
			zap.String("sweep_cron", s.cfg.SweepCron),
		)
	}

	// ----- Handlers -----
	handlers := &Handlers{
		BillingHandler:   billingHandler.NewBillingHandler(billingService),
		InvoiceHandler:   invoiceHandler.NewInvoiceHandler(invoiceService),
		TenantHandler:    tenantHandler.NewTenantHandler(tenantService),
		AnalyticsHandler: analyticsHandler.NewAnalyticsHandler(analyticsService),
		AuthMiddleware:   middleware.NewAuthMiddleware(s.cfg.AdminJWTSecret),
	}

	SetupRouter(s.engine, logger, handlers)

	logger.Info("starting HTTP server", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops the scheduler and waits for in-flight jobs.
func (s *Server) Shutdown(ctx context.Context) {
	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}
}

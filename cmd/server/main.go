// @title           Strata Portal API
// @version         1.0
// @description     Property management portal for strata schemes: buildings, lots, residents, maintenance, levies and notices
// @BasePath        /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"strata-portal/internal/app/jobs"
	"strata-portal/internal/app/middleware"
	"strata-portal/internal/app/routes"
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/internal/infrastructure/database"
	"strata-portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// .env is optional; the environment may already be set by the deployment
	envErr := godotenv.Load()

	cfg := config.GetConfig()

	if err := logger.SetupLogger(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Dir:     cfg.LogDir,
		Service: "strata-portal",
	}); err != nil {
		fmt.Printf("failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Warning("no .env file loaded: %v", envErr)
	}
	if cfg.EnvType == "SERVER" {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		logger.L().Fatal("cannot create database pool", zap.Error(err))
	}
	db := pool.GetDB()

	if err := migrate(db, cfg.DBMigrationMode); err != nil {
		logger.L().Fatal("database migration failed", zap.Error(err))
	}

	ctx := context.Background()
	userService := services.NewUserService(db, cfg)
	if created, err := userService.EnsureAdminExists(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
		logger.L().Fatal("cannot ensure default admin", zap.Error(err))
	} else if created {
		logger.Info("created default admin %s", cfg.DefaultAdminEmail)
	}

	serviceContainer, err := container.NewServiceContainer(pool, cfg, services.NewRedisService(cfg))
	if err != nil {
		logger.L().Fatal("cannot build service container", zap.Error(err))
	}

	router := routes.SetupRouter(serviceContainer, cfg)

	stopJanitor := make(chan struct{})
	middleware.StartCacheJanitor(time.Minute, stopJanitor)

	var scheduler *jobs.Scheduler
	if cfg.SchedulerEnabled {
		paymentService := serviceContainer.GetService("payment").(services.InterfacePaymentService)
		scheduler = jobs.NewScheduler(paymentService, time.UTC)
		if err := scheduler.Start(); err != nil {
			logger.L().Fatal("cannot start scheduler", zap.Error(err))
		}
	}

	printSystemInfo(pool)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening on http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	close(stopJanitor)
	serviceContainer.Shutdown()
	if err := pool.Close(); err != nil {
		logger.Error("close database: %v", err)
	}
	logger.Info("server stopped")
}

// schemaModels lists every table the portal owns, parents first
func schemaModels() []interface{} {
	return []interface{}{
		&models.Building{},
		&models.Property{},
		&models.User{},
		&models.MaintenanceRequest{},
		&models.Comment{},
		&models.Notification{},
		&models.Announcement{},
		&models.LevyPayment{},
	}
}

// migrate applies the schema. "drop" recreates every table and loses all data.
func migrate(db *gorm.DB, mode string) error {
	all := schemaModels()

	if mode == "drop" {
		logger.Warning("DB_MIGRATION_MODE=drop: dropping and recreating all tables")
		// children first so foreign keys do not block the drop
		for i := len(all) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(all[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}

	if err := db.AutoMigrate(all...); err != nil {
		return err
	}
	logger.Info("database migration completed (mode=%s)", mode)
	return nil
}

func printSystemInfo(pool *database.ConnectionPool) {
	fields := []zap.Field{
		zap.Int("cpus", runtime.NumCPU()),
		zap.Int("goroutines", runtime.NumGoroutine()),
	}
	if stats, err := pool.Stats(); err == nil {
		fields = append(fields, zap.Any("db_pool", stats))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fields = append(fields, zap.Uint64("alloc_mib", m.Alloc/1024/1024), zap.Uint64("sys_mib", m.Sys/1024/1024))

	logger.L().Info("system info", fields...)
}

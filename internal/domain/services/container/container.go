package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/store"
	"strata-portal/internal/infrastructure/backend"
	"strata-portal/internal/infrastructure/config"
	"strata-portal/internal/infrastructure/database"
	"strata-portal/internal/infrastructure/realtime"
	"strata-portal/pkg/logger"

	"gorm.io/gorm"
)

// ServiceContainer wires every service once and hands them to controllers by name
type ServiceContainer struct {
	db     *gorm.DB
	pool   *database.ConnectionPool
	config *config.Config

	hub              *realtime.Hub
	maintenanceStore store.MaintenanceStore

	jwtService          services.InterfaceJWTService
	redisService        services.InterfaceRedisService
	userService         services.InterfaceUserService
	buildingService     services.InterfaceBuildingService
	propertyDataService services.InterfacePropertyDataService
	maintenanceService  services.InterfaceMaintenanceService
	notificationService services.InterfaceNotificationService
	announcementService services.InterfaceAnnouncementService
	broadcastService    services.InterfaceBroadcastService
	paymentService      services.InterfacePaymentService
	reportService       services.InterfaceReportService

	mu sync.RWMutex
}

// NewServiceContainer builds the services on top of the pool. redisService may be nil.
func NewServiceContainer(pool *database.ConnectionPool, cfg *config.Config, redisService services.InterfaceRedisService) (*ServiceContainer, error) {
	if pool == nil || pool.GetDB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if redisService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisService.Ping(ctx); err != nil {
			logger.Warning("redis ping failed: %v, caching disabled", err)
			redisService = nil
		}
	}

	c := &ServiceContainer{
		db:           pool.GetDB(),
		pool:         pool,
		config:       cfg,
		redisService: redisService,
		hub:          realtime.NewHub(),
	}
	if err := c.initializeServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewEmptyContainer returns a container with no services; fill it with SetService
func NewEmptyContainer(cfg *config.Config) *ServiceContainer {
	return &ServiceContainer{config: cfg, hub: realtime.NewHub()}
}

// NewMaintenanceStore picks the store named by MAINTENANCE_STORE
func NewMaintenanceStore(db *gorm.DB, cfg *config.Config) (store.MaintenanceStore, error) {
	if !cfg.UsesBackendStore() {
		return store.NewGormStore(db), nil
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL:    cfg.BackendURL,
		APIKey:     cfg.BackendAPIKey,
		RetryCount: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("maintenance store %q: %w", cfg.MaintenanceStore, err)
	}
	return store.NewBackendStore(client), nil
}

func (c *ServiceContainer) initializeServices() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := NewMaintenanceStore(c.db, c.config)
	if err != nil {
		return err
	}
	c.maintenanceStore = st
	logger.Info("maintenance store: %s", st.Name())

	c.jwtService = services.NewJWTService(c.config, c.db)
	c.userService = services.NewUserService(c.db, c.config)
	c.buildingService = services.NewBuildingService(c.db, c.config)
	c.propertyDataService = services.NewPropertyDataService(c.db, c.config, c.redisService)
	c.notificationService = services.NewNotificationService(c.db, c.config, c.hub)
	c.maintenanceService = services.NewMaintenanceService(c.db, c.config, st, c.notificationService)

	c.broadcastService = services.NewBroadcastService(c.config)
	if c.broadcastService.Enabled() {
		if err := c.broadcastService.Connect(); err != nil {
			logger.Error("MQTT connect failed: %v", err)
		}
	}
	c.announcementService = services.NewAnnouncementService(c.db, c.config, c.broadcastService)

	c.paymentService = services.NewPaymentService(c.db, c.config, c.notificationService)
	c.reportService = services.NewReportService(c.db, c.config)
	return nil
}

// GetService returns the service registered under name, or nil
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "pool":
		return c.pool
	case "hub":
		return c.hub
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "user":
		return c.userService
	case "building":
		return c.buildingService
	case "property_data":
		return c.propertyDataService
	case "maintenance":
		return c.maintenanceService
	case "notification":
		return c.notificationService
	case "announcement":
		return c.announcementService
	case "broadcast":
		return c.broadcastService
	case "payment":
		return c.paymentService
	case "report":
		return c.reportService
	default:
		return nil
	}
}

// SetService replaces a service; used by tests to inject fakes
func (c *ServiceContainer) SetService(name string, svc interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "jwt":
		c.jwtService = svc.(services.InterfaceJWTService)
	case "redis":
		c.redisService = svc.(services.InterfaceRedisService)
	case "user":
		c.userService = svc.(services.InterfaceUserService)
	case "building":
		c.buildingService = svc.(services.InterfaceBuildingService)
	case "property_data":
		c.propertyDataService = svc.(services.InterfacePropertyDataService)
	case "maintenance":
		c.maintenanceService = svc.(services.InterfaceMaintenanceService)
	case "notification":
		c.notificationService = svc.(services.InterfaceNotificationService)
	case "announcement":
		c.announcementService = svc.(services.InterfaceAnnouncementService)
	case "payment":
		c.paymentService = svc.(services.InterfacePaymentService)
	case "report":
		c.reportService = svc.(services.InterfaceReportService)
	default:
		panic("unknown service " + name)
	}
}

// GetDB returns the gorm handle
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Hub returns the websocket hub
func (c *ServiceContainer) Hub() *realtime.Hub {
	return c.hub
}

// Shutdown releases broker and cache connections
func (c *ServiceContainer) Shutdown() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.broadcastService != nil {
		c.broadcastService.Disconnect()
	}
	if c.redisService != nil {
		if err := c.redisService.Close(); err != nil {
			logger.Warning("redis close: %v", err)
		}
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ispbot/billnotify/internal/store"
)

// HealthService defines the interface for checking application health
type HealthService interface {
	Check(ctx context.Context) map[string]string
}

// healthService is the concrete implementation of the HealthService
type healthService struct {
	dbStorage store.Notifications
}

// NewHealthService creates a new instance of the health check service.
// It performs readiness checks on critical dependencies.
func NewHealthService(dbStorage store.Notifications) HealthService {
	return &healthService{dbStorage: dbStorage}
}

// Check performs health checks on all critical dependencies
func (s healthService) Check(ctx context.Context) map[string]string {
	healthStatus := make(map[string]string)

	// Use a timeout to prevent the health check from hanging
	dbCtx, dbCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dbCancel()

	if err := s.dbStorage.Ping(dbCtx); err != nil {
		healthStatus["db"] = fmt.Sprintf("error: %s", err.Error())
	} else {
		healthStatus["db"] = "ok"
	}

	return healthStatus
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/general_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	clock func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		// Return a default logger if not found in context
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Now returns the current UTC time from the configured clock.
func (s *BaseService) Now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// tenantLocks serializes work per tenant with one mutex per tenant ID.
type tenantLocks struct {
	mapMu sync.Mutex
	muMap map[string]*sync.Mutex
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{muMap: make(map[string]*sync.Mutex)}
}

// lock acquires the tenant's mutex and returns its release function.
func (t *tenantLocks) lock(tenantID string) func() {
	t.mapMu.Lock()
	mu, exists := t.muMap[tenantID]
	if !exists {
		mu = &sync.Mutex{}
		t.muMap[tenantID] = mu
	}
	t.mapMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

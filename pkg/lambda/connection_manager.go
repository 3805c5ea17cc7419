package lambda

import (
	"context"
	"sync"
	"time"

	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/pkg/server"
)

// ConnectionManager keeps the service container of a warm Lambda process.
// The container, and with it the warehouse pool, is built once per cold start.
type ConnectionManager struct {
	container    *server.Container
	lastUsed     time.Time
	mu           sync.RWMutex
	initialized  bool
	config       *config.Config
	newContainer func(context.Context, *config.Config) (*server.Container, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager(server.NewContainer)
	})
	return globalConnectionManager
}

// NewConnectionManager creates a connection manager building containers with build
func NewConnectionManager(build func(context.Context, *config.Config) (*server.Container, error)) *ConnectionManager {
	return &ConnectionManager{newContainer: build}
}

// Initialize builds the container from cfg. Later calls are no-ops once it succeeded.
func (cm *ConnectionManager) Initialize(ctx context.Context, cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}

	container, err := cm.newContainer(ctx, cfg)
	if err != nil {
		return err
	}

	cm.config = cfg
	cm.container = container
	cm.lastUsed = time.Now()
	cm.initialized = true
	return nil
}

// GetContainer returns the service container, initializing if necessary
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.RLock()
	if cm.initialized && cm.container != nil {
		container := cm.container
		cm.mu.RUnlock()
		cm.UpdateLastUsed()
		return container, nil
	}
	cm.mu.RUnlock()

	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		return nil, err
	}
	if err := cm.Initialize(ctx, cfg); err != nil {
		return nil, err
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.container, nil
}

// IsHealthy reports whether a container is ready
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.initialized && cm.container != nil
}

// LastUsed returns when the container was last handed out
func (cm *ConnectionManager) LastUsed() time.Time {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.lastUsed
}

// Cleanup closes the container so the next call rebuilds it
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
	}

	cm.initialized = false
	return nil
}

// UpdateLastUsed updates the last used timestamp
func (cm *ConnectionManager) UpdateLastUsed() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.lastUsed = time.Now()
}

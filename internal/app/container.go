// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/hierarchy"
	"github.com/runoshun/tasktree/internal/infra/config"
	"github.com/runoshun/tasktree/internal/infra/jsonstore"
	"github.com/runoshun/tasktree/internal/infra/logging"
	"github.com/runoshun/tasktree/internal/infra/memstore"
	"github.com/runoshun/tasktree/internal/infra/sqlitestore"
	"github.com/runoshun/tasktree/internal/infra/userdir"
	"github.com/runoshun/tasktree/internal/usecase"
	"github.com/runoshun/tasktree/internal/workload"
)

// Config holds the application paths.
type Config struct {
	DataDir   string // Path to the .tasktree directory
	StorePath string // Path to the task store file (empty for the memory store)
}

// newConfig derives paths from the data directory and store backend.
func newConfig(dataDir, store string) Config {
	cfg := Config{DataDir: dataDir}
	switch store {
	case domain.StoreJSON:
		cfg.StorePath = filepath.Join(dataDir, domain.JSONStoreName)
	case domain.StoreSQLite:
		cfg.StorePath = filepath.Join(dataDir, domain.SQLiteDBName)
	}
	return cfg
}

// Options controls how New opens the data directory.
type Options struct {
	// Create allows opening a data directory that does not exist yet.
	// Only 'tasktree init' sets it.
	Create bool

	// Stderr receives process diagnostics. Defaults to os.Stderr.
	Stderr io.Writer
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks            domain.TaskStore
	StoreInitializer domain.StoreInitializer
	Users            domain.UserDirectory
	Clock            domain.Clock
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	TaskLogger       domain.Logger

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	engine    *hierarchy.Engine
	closers   []io.Closer

	engineOnce sync.Once

	// Configuration
	Config Config
}

// New creates a Container for the data directory.
// It loads configuration, opens the configured store, and wires the
// hierarchy engine over it.
func New(dataDir string, opts Options) (*Container, error) {
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	if !opts.Create {
		if _, err := os.Stat(dataDir); errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotInitialized
		}
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := newConfig(dataDir, appConfig.Tasks.Store)

	// Process diagnostics only; routine entries stay in the log files
	logger := slog.New(slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	c := &Container{
		Clock:         domain.RealClock{},
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		Users:         userdir.FromConfig(appConfig.Users),
		Logger:        logger,
		AppConfig:     appConfig,
		Config:        cfg,
	}

	if err := c.openStore(appConfig.Tasks.Store); err != nil {
		return nil, err
	}

	fileLogger := logging.New(dataDir, logging.ParseLevel(appConfig.Log.Level), logging.WithMirror(logger))
	c.TaskLogger = fileLogger
	c.closers = append(c.closers, fileLogger)

	return c, nil
}

// openStore creates the task store for the configured backend.
func (c *Container) openStore(backend string) error {
	switch backend {
	case domain.StoreJSON:
		store := jsonstore.New(c.Config.StorePath)
		c.Tasks = store
		c.StoreInitializer = store
	case domain.StoreSQLite:
		store, err := sqlitestore.Open(c.Config.StorePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		c.Tasks = store
		c.StoreInitializer = store
		c.closers = append(c.closers, store)
	case domain.StoreMemory:
		store := memstore.New()
		c.Tasks = store
		c.StoreInitializer = store
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownStore, backend)
	}
	return nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, tasks domain.TaskStore, storeInit domain.StoreInitializer, clock domain.Clock, logger *slog.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	return &Container{
		Tasks:            tasks,
		StoreInitializer: storeInit,
		Users:            userdir.FromConfig(appConfig.Users),
		Clock:            clock,
		ConfigLoader:     config.NewLoader(cfg.DataDir),
		ConfigManager:    config.NewManager(cfg.DataDir),
		Logger:           logger,
		AppConfig:        appConfig,
		Config:           cfg,
	}
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Engine returns the hierarchy engine, creating it on first use.
// The engine must be shared: its lock table only protects operations
// that go through the same instance.
func (c *Container) Engine() *hierarchy.Engine {
	c.engineOnce.Do(func() {
		c.engine = hierarchy.New(c.Tasks, c.Users, c.Clock, c.TaskLogger, hierarchy.Options{
			DeletePolicy:  c.AppConfig.Tasks.DeletePolicy,
			ValidateOwner: c.AppConfig.Tasks.ValidateOwner,
		})
	})
	return c.engine
}

// Workload returns a workload aggregator over the task store.
func (c *Container) Workload() *workload.Aggregator {
	return workload.New(c.Tasks, c.Users)
}

// UseCase factory methods

// InitRepoUseCase returns a new InitRepo use case.
func (c *Container) InitRepoUseCase() *usecase.InitRepo {
	return usecase.NewInitRepo(c.StoreInitializer)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Engine(), c.TaskLogger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Tasks, c.Config.DataDir)
}

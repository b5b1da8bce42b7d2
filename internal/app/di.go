// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/neoskop/hostit/internal/config"
	"github.com/neoskop/hostit/internal/database"
	filehttp "github.com/neoskop/hostit/internal/file/http"
	fileRepository "github.com/neoskop/hostit/internal/file/repository"
	fileUsecase "github.com/neoskop/hostit/internal/file/usecase"
	"github.com/neoskop/hostit/internal/http"
	"github.com/neoskop/hostit/internal/metrics"
	"github.com/neoskop/hostit/internal/token"
	"github.com/neoskop/hostit/internal/upload"
	"github.com/neoskop/hostit/internal/verifier"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Token handling
	tokenCodec *token.Codec

	// Upload pipeline
	verifierChain *verifier.Chain
	uploadGate    *upload.Gate

	// Repositories and use cases
	fileRepo    fileUsecase.FileRepository
	fileUseCase fileUsecase.FileUseCase

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	scanMetrics     *metrics.ScanMetrics

	// Servers
	apiServer     *http.APIServer
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	tokenCodecInit      sync.Once
	verifierChainInit   sync.Once
	uploadGateInit      sync.Once
	fileRepoInit        sync.Once
	fileUseCaseInit     sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	scanMetricsInit     sync.Once
	apiServerInit       sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// TokenCodec returns the capability token codec. When no token secret is
// configured the codec is nil and token enforcement is disabled.
func (c *Container) TokenCodec() (*token.Codec, error) {
	c.tokenCodecInit.Do(func() {
		if c.config.TokenSecret == "" {
			return
		}

		codec, err := token.NewCodec(
			c.config.TokenSecret,
			token.WithIssuer(c.config.TokenIssuer),
			token.WithTTL(c.config.TokenTTL),
		)
		if err != nil {
			c.initErrors["tokenCodec"] = fmt.Errorf("failed to create token codec: %w", err)
			return
		}
		c.tokenCodec = codec
	})
	if storedErr, exists := c.initErrors["tokenCodec"]; exists {
		return nil, storedErr
	}
	return c.tokenCodec, nil
}

// VerifierChain returns the configured upload verifier chain.
func (c *Container) VerifierChain() (*verifier.Chain, error) {
	c.verifierChainInit.Do(func() {
		codec, err := c.TokenCodec()
		if err != nil {
			c.initErrors["verifierChain"] = err
			return
		}

		var observer verifier.ScanObserver
		if c.config.MetricsEnabled {
			scanMetrics, err := c.ScanMetrics()
			if err != nil {
				c.initErrors["verifierChain"] = err
				return
			}
			observer = scanMetrics
		}

		chain, err := verifier.BuildChain(c.config.VerifierNames(), verifier.Deps{
			Logger:        c.Logger(),
			Codec:         codec,
			ClamAVCommand: c.config.ClamAVCommand,
			ScanObserver:  observer,
		})
		if err != nil {
			c.initErrors["verifierChain"] = fmt.Errorf("failed to build verifier chain: %w", err)
			return
		}
		c.verifierChain = chain
	})
	if storedErr, exists := c.initErrors["verifierChain"]; exists {
		return nil, storedErr
	}
	return c.verifierChain, nil
}

// UploadGate returns the upload gate guarding all write endpoints.
func (c *Container) UploadGate() (*upload.Gate, error) {
	c.uploadGateInit.Do(func() {
		chain, err := c.VerifierChain()
		if err != nil {
			c.initErrors["uploadGate"] = err
			return
		}

		c.uploadGate = upload.NewGate(
			c.config.AcceptedTypes(),
			c.config.UploadLimitBytes,
			chain,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["uploadGate"]; exists {
		return nil, storedErr
	}
	return c.uploadGate, nil
}

// FileRepository returns the file repository instance.
func (c *Container) FileRepository() (fileUsecase.FileRepository, error) {
	c.fileRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["fileRepo"] = fmt.Errorf("failed to get database for file repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.fileRepo = fileRepository.NewMySQLFileRepository(db)
		case "postgres":
			c.fileRepo = fileRepository.NewPostgreSQLFileRepository(db)
		default:
			c.initErrors["fileRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["fileRepo"]; exists {
		return nil, storedErr
	}
	return c.fileRepo, nil
}

// FileUseCase returns the file use case instance, decorated with metrics when
// enabled.
func (c *Container) FileUseCase() (fileUsecase.FileUseCase, error) {
	c.fileUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get tx manager for file use case: %w", err)
			return
		}

		fileRepo, err := c.FileRepository()
		if err != nil {
			c.initErrors["fileUseCase"] = fmt.Errorf("failed to get file repository for file use case: %w", err)
			return
		}

		useCase := fileUsecase.NewFileUseCase(txManager, fileRepo)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				c.initErrors["fileUseCase"] = err
				return
			}
			useCase = fileUsecase.NewFileUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.fileUseCase = useCase
	})
	if storedErr, exists := c.initErrors["fileUseCase"]; exists {
		return nil, storedErr
	}
	return c.fileUseCase, nil
}

// MetricsProvider returns the metrics provider instance.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// ScanMetrics returns the upload scan metrics recorder.
func (c *Container) ScanMetrics() (*metrics.ScanMetrics, error) {
	c.scanMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["scanMetrics"] = err
			return
		}

		scanMetrics, err := metrics.NewScanMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["scanMetrics"] = fmt.Errorf("failed to create scan metrics: %w", err)
			return
		}
		c.scanMetrics = scanMetrics
	})
	if storedErr, exists := c.initErrors["scanMetrics"]; exists {
		return nil, storedErr
	}
	return c.scanMetrics, nil
}

// APIServer returns the API server instance.
func (c *Container) APIServer() (*http.APIServer, error) {
	c.apiServerInit.Do(func() {
		fileUseCase, err := c.FileUseCase()
		if err != nil {
			c.initErrors["apiServer"] = err
			return
		}

		gate, err := c.UploadGate()
		if err != nil {
			c.initErrors["apiServer"] = err
			return
		}

		db, err := c.DB()
		if err != nil {
			c.initErrors["apiServer"] = err
			return
		}

		var meterProvider *metrics.Provider
		if c.config.MetricsEnabled {
			meterProvider, err = c.MetricsProvider()
			if err != nil {
				c.initErrors["apiServer"] = err
				return
			}
		}

		logger := c.Logger()
		fileHandler := filehttp.NewFileHandler(fileUseCase, logger)

		if meterProvider != nil {
			c.apiServer = http.NewAPIServer(c.config, fileHandler, gate, db, meterProvider.MeterProvider(), logger)
		} else {
			c.apiServer = http.NewAPIServer(c.config, fileHandler, gate, db, nil, logger)
		}
	})
	if storedErr, exists := c.initErrors["apiServer"]; exists {
		return nil, storedErr
	}
	return c.apiServer, nil
}

// MetricsServer returns the metrics server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}

		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.apiServer != nil {
		if err := c.apiServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured JSON logger based on the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Package app wires configuration, storage, clients and services into
// the shared application core
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyuoka/workpal/internal/clients/alphavantage"
	"github.com/hyuoka/workpal/internal/clients/gemini"
	"github.com/hyuoka/workpal/internal/clients/google"
	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/services/agenda"
	"github.com/hyuoka/workpal/internal/services/documents"
	"github.com/hyuoka/workpal/internal/services/finance"
	"github.com/hyuoka/workpal/internal/services/minutes"
	"github.com/hyuoka/workpal/internal/services/monitor"
	"github.com/hyuoka/workpal/internal/services/session"
	"github.com/hyuoka/workpal/internal/services/watchlist"
	"github.com/hyuoka/workpal/internal/storage"
)

// App holds all initialized services and clients. It is the shared
// core behind cmd/workpal-server.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	QuoteClient  interfaces.QuoteClient
	GoogleClient interfaces.GoogleClient
	GeminiClient interfaces.DigestClient

	SessionService   *session.Service
	WatchlistService interfaces.WatchlistService
	MonitorService   interfaces.MonitorService
	AgendaService    interfaces.AgendaService
	FinanceService   interfaces.FinanceService
	DocumentsService interfaces.DocumentsService
	MinutesService   interfaces.MinutesService

	StartupTime time.Time
}

// tokenSourceFunc adapts a closure to interfaces.TokenSource so the
// Google client can be built before the session service that backs it.
type tokenSourceFunc func(ctx context.Context) (string, error)

func (f tokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic
// is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("WORKPAL_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "workpal.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/workpal.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.User.Path != "" && !filepath.IsAbs(config.Storage.User.Path) {
		config.Storage.User.Path = filepath.Join(binDir, config.Storage.User.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	if config.Clients.AlphaVantage.APIKey == "" {
		logger.Warn().Msg("Alpha Vantage API key not configured - quotes will be simulated")
	}
	quoteClient := alphavantage.NewClient(config.Clients.AlphaVantage.APIKey,
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
		alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
	)

	// The session service owns the Google credential, but it also needs
	// the Google client for validation. The closure defers the lookup
	// until the first workspace call, after sessionService is set.
	var sessionService *session.Service
	googleClient := google.NewClient(
		tokenSourceFunc(func(ctx context.Context) (string, error) {
			return sessionService.Token(ctx)
		}),
		google.WithLogger(logger),
		google.WithTimeout(config.Clients.Google.GetTimeout()),
	)

	var geminiClient interfaces.DigestClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - digest will be unavailable")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - digest will be unavailable")
	}

	watchlistService := watchlist.NewService(storageManager, quoteClient, logger)

	// keep the interface nil when no webhook is configured, a typed nil
	// would pass the notifier nil checks
	var notifier interfaces.Notifier
	if webhook := monitor.NewWebhookNotifier(config.Monitor.WebhookURL, logger); webhook != nil {
		notifier = webhook
	}
	monitorService := monitor.NewService(watchlistService, notifier, &config.Monitor, logger)

	sessionService = session.NewService(storageManager, googleClient, monitorService, &config.Auth, logger)

	agendaService := agenda.NewService(googleClient, geminiClient, logger)
	financeService := finance.NewService(storageManager, googleClient, &config.Finance, logger)
	documentsService := documents.NewService(googleClient, &config.Documents, logger)
	minutesService := minutes.NewService(googleClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quoteClient,
		GoogleClient:     googleClient,
		GeminiClient:     geminiClient,
		SessionService:   sessionService,
		WatchlistService: watchlistService,
		MonitorService:   monitorService,
		AgendaService:    agendaService,
		FinanceService:   financeService,
		DocumentsService: documentsService,
		MinutesService:   minutesService,
		StartupTime:      startupStart,
	}

	// a server restart should not silently drop a signed-in user's
	// monitoring
	a.resumeSession(ctx)

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// resumeSession restarts the monitor loop when a persisted session
// survives a restart.
func (a *App) resumeSession(ctx context.Context) {
	status, err := a.SessionService.Status(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to check persisted session")
		return
	}
	if status.SignedIn {
		a.MonitorService.Start()
		a.Logger.Info().Msg("Persisted session found, monitor resumed")
	}
}

// Close releases all resources held by the App. Shutdown order: stop
// the monitor loop, close storage.
func (a *App) Close() {
	if a.MonitorService != nil {
		a.MonitorService.Stop()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

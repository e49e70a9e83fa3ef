package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"adoption-tracker-service/internal/adapters/console"
	"adoption-tracker-service/internal/adapters/filestorage"
	logger_adapter "adoption-tracker-service/internal/adapters/logger"
	"adoption-tracker-service/internal/adapters/pawsfetcher"
	"adoption-tracker-service/internal/adapters/petangofetcher"
	"adoption-tracker-service/internal/adapters/petfinderfetcher"
	"adoption-tracker-service/internal/adapters/petharborfetcher"
	postgres_adapter "adoption-tracker-service/internal/adapters/postgres"
	sqlite_adapter "adoption-tracker-service/internal/adapters/sqlite"
	"adoption-tracker-service/internal/configs"
	"adoption-tracker-service/internal/constants"
	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
	usecases_port "adoption-tracker-service/internal/core/port/usecases"
	"adoption-tracker-service/internal/core/usecase"
	fluentlogger "adoption-tracker-service/pkg/fluent_logger"
	"adoption-tracker-service/pkg/postgres"
	"adoption-tracker-service/pkg/scraper"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	logger       port.LoggerPort
	fluentClient *fluent.Fluent
	dbPool       *pgxpool.Pool
	sqlite       *sqlite_adapter.ListingArchiveAdapter

	restoreState usecases_port.RestoreStatePort
	pollCycle    usecases_port.PollCyclePort
	waiter       port.WaiterPort
	interval     time.Duration
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Writer:   os.Stderr, // stdout занят объявлениями и спиннером
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.JSON,
		UseColor: !appConfig.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		fluentClient: fluentClient,
		interval:     appConfig.Polling.Interval,
	}
	// закрываем уже открытые ресурсы, если сборка не дошла до конца
	ok := false
	defer func() {
		if !ok {
			application.close()
		}
	}()

	// --- 3. ПОЛЬЗОВАТЕЛЬСКИЕ КЛЮЧИ ---
	keys, err := configs.LoadKeys(appConfig.Paths.Keys)
	if err != nil {
		appLogger.Error("Failed to load keys", err, port.Fields{"path": appConfig.Paths.Keys})
		return nil, fmt.Errorf("failed to load keys: %w", err)
	}
	appLogger.Info("Keys loaded", port.Fields{
		"excluded_breeds": len(keys.ExcludedBreeds),
		"location":        keys.Location,
	})

	// --- 4. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	scraperOpts := scraper.Options{
		RequestTimeout: appConfig.Polling.FetchTimeout,
		RandomDelay:    appConfig.Polling.RequestRandomDelay,
	}
	fetchers, err := newFetchers(scraperOpts)
	if err != nil {
		appLogger.Error("Failed to create provider fetchers", err, nil)
		return nil, err
	}
	appLogger.Info("Provider fetchers initialized.", port.Fields{"providers": len(fetchers)})

	snapshots, err := filestorage.NewSnapshotFileStorage(appConfig.Paths.State)
	if err != nil {
		return nil, err
	}

	fileArtifacts, err := filestorage.NewArtifactFileStorage(filestorage.ArtifactConfig{
		Dir:            appConfig.Paths.Artifacts,
		DownloadPhotos: appConfig.Output.DownloadPhotos,
		PhotoTimeout:   appConfig.Polling.FetchTimeout,
	})
	if err != nil {
		return nil, err
	}

	var archives []port.ArtifactStoragePort
	if appConfig.Archive.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.Polling.FetchTimeout)
		dbPool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL:    appConfig.Archive.DatabaseURL,
			MaxConns:       1,
			ConnectTimeout: appConfig.Polling.FetchTimeout,
		})
		if err != nil {
			cancel()
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		application.dbPool = dbPool

		pgArchive, err := postgres_adapter.NewListingArchiveAdapter(ctx, dbPool)
		cancel()
		if err != nil {
			return nil, err
		}
		archives = append(archives, pgArchive)
		appLogger.Info("PostgreSQL listing archive enabled.", nil)
	}
	if appConfig.Archive.SQLitePath != "" {
		sqliteArchive, err := sqlite_adapter.NewListingArchiveAdapter(context.Background(), appConfig.Archive.SQLitePath)
		if err != nil {
			appLogger.Error("Failed to open SQLite archive", err, port.Fields{"path": appConfig.Archive.SQLitePath})
			return nil, err
		}
		application.sqlite = sqliteArchive
		archives = append(archives, sqliteArchive)
		appLogger.Info("SQLite listing archive enabled.", port.Fields{"path": appConfig.Archive.SQLitePath})
	}
	artifacts := filestorage.NewMultiArtifactStorage(fileArtifacts, archives...)

	printer := console.NewPrinter(os.Stdout)
	bell := console.NewBell(os.Stdout, appConfig.Output.AlertBells)
	application.waiter = console.NewCountdown(os.Stdout, appConfig.Output.ShowCountdown)

	// --- 5. USE CASES ---
	store := domain.NewStateStore(time.Now)
	filter := domain.NewBreedFilter(keys.ExcludedBreeds)
	threshold := appConfig.Polling.StalenessThreshold()

	detector, err := usecase.NewDetectAdoptionsUseCase(store, artifacts, printer, threshold)
	if err != nil {
		return nil, err
	}
	dispatcher, err := usecase.NewAlertDispatcher(bell, time.Now)
	if err != nil {
		return nil, err
	}
	pollCycle, err := usecase.NewPollCycleUseCase(
		fetchers,
		constants.BuildSearches(keys),
		store,
		filter,
		artifacts,
		printer,
		detector,
		snapshots,
		dispatcher,
		usecase.PollCycleConfig{
			FetchTimeout:      appConfig.Polling.FetchTimeout,
			MaxPagesPerSearch: appConfig.Polling.MaxPagesPerSearch,
			FetchBudget:       threshold - appConfig.Polling.Interval,
			Now:               time.Now,
		},
	)
	if err != nil {
		return nil, err
	}
	restoreState, err := usecase.NewRestoreStateUseCase(snapshots, store, printer)
	if err != nil {
		return nil, err
	}
	appLogger.Info("All use cases initialized.", port.Fields{
		"staleness_threshold": threshold.String(),
		"poll_interval":       appConfig.Polling.Interval.String(),
	})

	application.pollCycle = pollCycle
	application.restoreState = restoreState
	ok = true
	return application, nil
}

// newFetchers создает адаптеры в порядке опроса
func newFetchers(opts scraper.Options) ([]port.ListingFetcherPort, error) {
	paws, err := pawsfetcher.NewPAWSFetcherAdapter(constants.PAWSURL, opts)
	if err != nil {
		return nil, err
	}
	petango, err := petangofetcher.NewPetangoFetcherAdapter(constants.PetangoURL, opts)
	if err != nil {
		return nil, err
	}
	petfinder, err := petfinderfetcher.NewPetfinderFetcherAdapter(constants.PetfinderURL, opts)
	if err != nil {
		return nil, err
	}
	petharbor, err := petharborfetcher.NewPetharborFetcherAdapter(constants.PetharborURL, opts)
	if err != nil {
		return nil, err
	}

	byProvider := map[string]port.ListingFetcherPort{
		paws.Provider():      paws,
		petango.Provider():   petango,
		petfinder.Provider(): petfinder,
		petharbor.Provider(): petharbor,
	}
	fetchers := make([]port.ListingFetcherPort, 0, len(constants.ProviderOrder))
	for _, provider := range constants.ProviderOrder {
		fetchers = append(fetchers, byProvider[provider])
	}
	return fetchers, nil
}

// Run восстанавливает состояние и крутит цикл опроса до SIGINT/SIGTERM.
// Сигнал - штатное завершение (nil), паника внутри цикла возвращается как ошибка.
func (a *App) Run() (err error) {
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected internal fault: %v", r)
			a.logger.Error("Recovered from panic", err, port.Fields{"stack": string(debug.Stack())})
		}
	}()

	ctx = contextkeys.ContextWithLogger(ctx, a.logger)
	a.logger.Info("Application is starting...", nil)

	restored, err := a.restoreState.Execute(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}
	a.logger.Info("Application running. Waiting for signals...", port.Fields{"restored_listings": restored})

	for {
		if err := a.pollCycle.Execute(ctx); err != nil && !isShutdown(ctx, err) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		if err := a.waiter.Wait(ctx, a.interval); err != nil {
			if isShutdown(ctx, err) {
				break
			}
			return err
		}
	}

	a.logger.Warn("Received signal, shutting down", nil)
	return nil
}

// isShutdown - ошибка вызвана отменой контекста приложения
func isShutdown(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// close освобождает ресурсы в обратном порядке
func (a *App) close() {
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			a.logger.Error("Error closing SQLite archive", err, nil)
		}
		a.sqlite = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
		a.dbPool = nil
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}

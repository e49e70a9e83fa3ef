package usecase

import (
	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
	usecases_port "adoption-tracker-service/internal/core/port/usecases"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxPagesPerSearch ограничивает пагинацию одного поиска, если источник зациклился
const DefaultMaxPagesPerSearch = 50

// PollCycleConfig - параметры одного цикла опроса
type PollCycleConfig struct {
	FetchTimeout      time.Duration // таймаут одного запроса страницы
	MaxPagesPerSearch int
	// FetchBudget - сколько может длиться опрос источников, прежде чем
	// детектор усыновлений начнет ошибаться. 0 отключает предупреждение.
	FetchBudget time.Duration
	// Now - часы цикла, nil означает time.Now
	Now func() time.Time
}

// cycleStats собирает статистику цикла для итогового лога
type cycleStats struct {
	fetched         int
	created         int
	changed         int
	unchanged       int
	skipped         int
	failedProviders []string
}

// PollCycleUseCase выполняет один полный цикл: источники -> фильтр -> хранилище,
// затем детектор усыновлений, сохранение снимка и сигнал
type PollCycleUseCase struct {
	fetchers   []port.ListingFetcherPort
	searches   map[string][]domain.SearchCriteria
	store      *domain.StateStore
	filter     *domain.BreedFilter
	artifacts  port.ArtifactStoragePort
	printer    port.ListingPrinterPort
	detector   usecases_port.DetectAdoptionsPort
	snapshots  port.SnapshotStoragePort
	dispatcher *AlertDispatcher
	cfg        PollCycleConfig
	now        func() time.Time
}

// NewPollCycleUseCase создает новый экземпляр PollCycleUseCase.
// Порядок fetchers задает порядок опроса источников.
func NewPollCycleUseCase(
	fetchers []port.ListingFetcherPort,
	searches map[string][]domain.SearchCriteria,
	store *domain.StateStore,
	filter *domain.BreedFilter,
	artifacts port.ArtifactStoragePort,
	printer port.ListingPrinterPort,
	detector usecases_port.DetectAdoptionsPort,
	snapshots port.SnapshotStoragePort,
	dispatcher *AlertDispatcher,
	cfg PollCycleConfig,
) (*PollCycleUseCase, error) {
	if store == nil || artifacts == nil || printer == nil || detector == nil || snapshots == nil || dispatcher == nil {
		return nil, fmt.Errorf("poll cycle: missing required dependency")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("poll cycle: fetch timeout must be positive")
	}
	if cfg.MaxPagesPerSearch <= 0 {
		cfg.MaxPagesPerSearch = DefaultMaxPagesPerSearch
	}
	if filter == nil {
		filter = domain.NewBreedFilter(nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &PollCycleUseCase{
		fetchers:   fetchers,
		searches:   searches,
		store:      store,
		filter:     filter,
		artifacts:  artifacts,
		printer:    printer,
		detector:   detector,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        now,
	}, nil
}

// Execute запускает цикл. Ошибки источников и сохранения не прерывают цикл,
// возвращается только отмена контекста.
func (uc *PollCycleUseCase) Execute(ctx context.Context) error {
	cycleID := uuid.NewString()
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "PollCycle",
		"cycle_id": cycleID,
	})
	ctx = contextkeys.ContextWithLogger(ctx, logger)
	ctx = contextkeys.ContextWithCycleID(ctx, cycleID)

	started := uc.now()
	logger.Debug("Starting poll cycle", port.Fields{"providers": len(uc.fetchers), "active_listings": uc.store.Len()})

	stats := &cycleStats{}
	for _, fetcher := range uc.fetchers {
		uc.pollProvider(ctx, fetcher, stats)
	}

	fetchDuration := uc.now().Sub(started)
	if uc.cfg.FetchBudget > 0 && fetchDuration > uc.cfg.FetchBudget {
		logger.Warn("Fetching took longer than the staleness margin, adoption detection may misfire", port.Fields{
			"fetch_duration": fetchDuration.String(),
			"budget":         uc.cfg.FetchBudget.String(),
		})
	}

	adopted := uc.detector.Execute(ctx)

	// сохраняем и при остановке посреди цикла: прерванные источники уже "освежены"
	if err := uc.snapshots.Save(context.WithoutCancel(ctx), uc.store.Snapshot()); err != nil {
		// предыдущий снимок остается целым, попробуем снова в следующем цикле
		logger.Error("Failed to save snapshot", err, nil)
	}

	alerted, err := uc.dispatcher.Evaluate(ctx)
	if err != nil {
		logger.Warn("Alert was not delivered", port.Fields{"error": err.Error()})
	}

	logger.Info("Poll cycle finished", port.Fields{
		"fetched":          stats.fetched,
		"new":              stats.created,
		"status_changed":   stats.changed,
		"unchanged":        stats.unchanged,
		"skipped":          stats.skipped,
		"adopted":          len(adopted),
		"failed_providers": stats.failedProviders,
		"active_listings":  uc.store.Len(),
		"alerted":          alerted,
		"duration":         uc.now().Sub(started).String(),
	})

	return ctx.Err()
}

// pollProvider последовательно выполняет все поиски источника.
// При первом сбое источник пропускается до следующего цикла, а его записи "освежаются".
func (uc *PollCycleUseCase) pollProvider(ctx context.Context, fetcher port.ListingFetcherPort, stats *cycleStats) {
	provider := fetcher.Provider()
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"provider": provider})

	printed := 0
	for _, criteria := range uc.searches[provider] {
		n, err := uc.runSearch(ctx, fetcher, criteria, stats)
		printed += n
		if err != nil {
			touched := uc.store.Touch(provider)
			stats.failedProviders = append(stats.failedProviders, provider)
			logger.Warn("Provider fetch failed, skipping provider for this cycle", port.Fields{
				"search":           criteria.Name,
				"error":            err.Error(),
				"listings_touched": touched,
			})
			break
		}
	}

	if printed > 0 {
		uc.printer.PrintBreak()
	}
}

// runSearch проходит все страницы одного поиска. Возвращает число напечатанных объявлений.
func (uc *PollCycleUseCase) runSearch(ctx context.Context, fetcher port.ListingFetcherPort, criteria domain.SearchCriteria, stats *cycleStats) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"provider": fetcher.Provider(),
		"search":   criteria.Name,
	})

	printed := 0
	visited := make(map[string]bool)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return printed, err
		}
		if page > uc.cfg.MaxPagesPerSearch {
			logger.Warn("Page limit reached, stopping pagination", port.Fields{"limit": uc.cfg.MaxPagesPerSearch})
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, uc.cfg.FetchTimeout)
		listings, nextCursor, err := fetcher.FetchListings(fetchCtx, criteria)
		cancel()
		if err != nil {
			return printed, fmt.Errorf("search %s page %d: %w", criteria.Name, page, err)
		}

		stats.fetched += len(listings)
		for _, l := range listings {
			if uc.handleListing(ctx, l, stats) {
				printed++
			}
		}

		if nextCursor == "" {
			break
		}
		if visited[nextCursor] {
			logger.Warn("Provider returned an already visited cursor, stopping pagination", port.Fields{"cursor": nextCursor})
			break
		}
		visited[nextCursor] = true
		criteria.Cursor = nextCursor
	}

	return printed, nil
}

// handleListing пропускает одно объявление через фильтр и хранилище.
// Возвращает true, если объявление было напечатано.
func (uc *PollCycleUseCase) handleListing(ctx context.Context, l domain.Listing, stats *cycleStats) bool {
	logger := contextkeys.LoggerFromContext(ctx)

	if err := l.Validate(); err != nil {
		stats.skipped++
		logger.Warn("Skipping malformed listing", port.Fields{"error": err.Error(), "name": l.Name})
		return false
	}

	outcome, rec, err := uc.store.Ingest(l, uc.filter.Excludes(l.Breed))
	if err != nil {
		stats.skipped++
		logger.Warn("Failed to ingest listing", port.Fields{"error": err.Error(), "listing": l.Key().String()})
		return false
	}

	switch outcome {
	case domain.OutcomeNew:
		stats.created++
	case domain.OutcomeStatusChanged:
		stats.changed++
	default:
		stats.unchanged++
	}

	// решение об исключении берется из записи: оно фиксируется при создании
	if !outcome.Notable() || rec.Excluded {
		return false
	}

	if err := uc.artifacts.Write(ctx, rec); err != nil {
		logger.Error("Failed to write listing artifact", err, port.Fields{"listing": rec.Key().String()})
	}
	uc.printer.PrintListing(rec)
	uc.dispatcher.Record(outcome, rec.Excluded)

	logger.Debug("Listing sighting recorded", port.Fields{
		"listing": rec.Key().String(),
		"outcome": outcome.String(),
		"pending": rec.Pending,
	})
	return true
}

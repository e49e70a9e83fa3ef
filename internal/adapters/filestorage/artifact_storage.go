package filestorage

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// ArtifactConfig - настройки записи артефактов
type ArtifactConfig struct {
	Dir            string
	DownloadPhotos bool
	PhotoTimeout   time.Duration
}

// ArtifactFileStorage пишет <animalId>.json и, по возможности, фото <animalId>.<ext>
type ArtifactFileStorage struct {
	dir string
	// родительский коллектор для фото, nil если загрузка отключена
	photos *colly.Collector
}

// NewArtifactFileStorage - конструктор. Каталог создается при необходимости.
func NewArtifactFileStorage(cfg ArtifactConfig) (*ArtifactFileStorage, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("artifact storage: directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact storage: create directory %s: %w", cfg.Dir, err)
	}

	s := &ArtifactFileStorage{dir: cfg.Dir}
	if cfg.DownloadPhotos {
		// фото лежат на CDN разных источников, поэтому без AllowedDomains
		c := colly.NewCollector(colly.AllowURLRevisit())
		if cfg.PhotoTimeout > 0 {
			c.SetRequestTimeout(cfg.PhotoTimeout)
		}
		extensions.RandomUserAgent(c)
		s.photos = c
	}
	return s, nil
}

// Write сохраняет артефакт объявления. Ошибка загрузки фото только логируется.
func (s *ArtifactFileStorage) Write(ctx context.Context, l domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ArtifactFileStorage",
		"listing":   l.Key().String(),
	})

	name, err := artifactName(l.AnimalID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(toRecord(l), "", "  ")
	if err != nil {
		return fmt.Errorf("artifact storage: encode %s: %w", l.Key(), err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, name+".json"), data, 0o644); err != nil {
		return fmt.Errorf("artifact storage: %w", err)
	}

	if s.photos == nil || !l.HasPhoto() {
		return nil
	}
	if s.photoExists(name) {
		return nil
	}
	if err := s.downloadPhoto(ctx, l.Provider, name, *l.PhotoURL); err != nil {
		logger.Warn("Failed to download listing photo", port.Fields{
			"photo": *l.PhotoURL,
			"error": err.Error(),
		})
		return nil
	}
	logger.Debug("Listing photo saved", port.Fields{"photo": *l.PhotoURL})
	return nil
}

func (s *ArtifactFileStorage) photoExists(name string) bool {
	matches, err := filepath.Glob(filepath.Join(s.dir, name+".*"))
	if err != nil {
		return false
	}
	for _, m := range matches {
		if filepath.Ext(m) != ".json" && !strings.Contains(filepath.Base(m), ".tmp-") {
			return true
		}
	}
	return false
}

func (s *ArtifactFileStorage) downloadPhoto(ctx context.Context, provider, name, photoURL string) error {
	collector := s.photos.Clone()
	collector.Context = ctx

	var saveErr error
	collector.OnResponse(func(r *colly.Response) {
		contentType := r.Headers.Get("Content-Type")
		ext := photoExtension(contentType)
		if ext == "" {
			saveErr = fmt.Errorf("unexpected photo content type %q", contentType)
			return
		}
		saveErr = writeFileAtomic(filepath.Join(s.dir, name+"."+ext), r.Body, 0o644)
	})
	collector.OnError(func(r *colly.Response, err error) {
		saveErr = &domain.FetchError{
			Provider:   provider,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	if err := collector.Visit(photoURL); err != nil {
		return fmt.Errorf("visit %s: %w", photoURL, err)
	}
	collector.Wait()
	return saveErr
}

// photoExtension: "image/jpeg" -> "jpeg", "image/svg+xml" -> "svg"
func photoExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	kind, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || kind != "image" || subtype == "" {
		return ""
	}
	subtype, _, _ = strings.Cut(subtype, "+")
	return artifactSafe(subtype)
}

// artifactName превращает id животного в безопасное имя файла
func artifactName(animalID string) (string, error) {
	name := artifactSafe(strings.TrimSpace(animalID))
	if name == "" || strings.Trim(name, ".") == "" {
		return "", fmt.Errorf("%w: animal id %q cannot be used as a file name", domain.ErrInvalidListing, animalID)
	}
	return name, nil
}

func artifactSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

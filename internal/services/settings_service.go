package services

import (
	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"time"

	"github.com/sirupsen/logrus"
)

// SettingsSnapshot is the point-in-time view of tax and service fee frozen
// into a sale at creation time.
type SettingsSnapshot struct {
	TaxPercent float64 `json:"tax_percent"`
	ServiceFee float64 `json:"service_fee"`
}

// SettingsCache is the Redis-backed cache of the snapshot.
type SettingsCache interface {
	SetSettingsCache(value interface{}, ttl time.Duration) error
	GetSettingsCache(dest interface{}) error
	InvalidateSettingsCache() error
}

type SettingsService interface {
	Snapshot() (SettingsSnapshot, error)
	Get() (*models.StoreSettings, error)
	Update(settings *models.StoreSettings) error
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	cache        SettingsCache
	cacheTTL     time.Duration
}

func NewSettingsService(settingsRepo repository.SettingsRepository, cache SettingsCache, cacheTTL time.Duration) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func (s *settingsService) Snapshot() (SettingsSnapshot, error) {
	if s.cache != nil {
		var cached SettingsSnapshot
		if err := s.cache.GetSettingsCache(&cached); err == nil {
			return cached, nil
		}
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return SettingsSnapshot{}, err
	}

	snapshot := SettingsSnapshot{
		TaxPercent: settings.TaxPercent,
		ServiceFee: settings.ServiceFee,
	}

	if s.cache != nil {
		if err := s.cache.SetSettingsCache(snapshot, s.cacheTTL); err != nil {
			logrus.WithError(err).Warn("failed to cache settings snapshot")
		}
	}

	return snapshot, nil
}

func (s *settingsService) Get() (*models.StoreSettings, error) {
	return s.settingsRepo.Get()
}

func (s *settingsService) Update(settings *models.StoreSettings) error {
	if err := s.settingsRepo.Update(settings); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSettingsCache(); err != nil {
			logrus.WithError(err).Warn("failed to invalidate settings cache")
		}
	}
	return nil
}

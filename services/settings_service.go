package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
	"github.com/liguebillard/federation-admin/storage"
)

const settingsCacheTTL = 5 * time.Minute

// settingsCache is a read-through cache over the settings table. Every
// mutating operation must call invalidate.
type settingsCache struct {
	mu     sync.Mutex
	values map[string]string
	expiry time.Time
	ttl    time.Duration
	now    func() time.Time
}

func newSettingsCache(ttl time.Duration) *settingsCache {
	return &settingsCache{ttl: ttl, now: time.Now}
}

func (c *settingsCache) get(load func() (map[string]string, error)) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.values != nil && c.now().Before(c.expiry) {
		return c.values, nil
	}

	values, err := load()
	if err != nil {
		return nil, err
	}
	c.values = values
	c.expiry = c.now().Add(c.ttl)
	return values, nil
}

func (c *settingsCache) invalidate() {
	c.mu.Lock()
	c.values = nil
	c.mu.Unlock()
}

type SettingsService interface {
	All(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) error
	// UploadLogo stores the branding logo in object storage and records its
	// public URL under the logo_url setting.
	UploadLogo(ctx context.Context, filename, contentType string, reader io.Reader) (string, error)
	// QualificationRule reads the finale qualification thresholds, falling
	// back to defaults for missing or unparsable values.
	QualificationRule(ctx context.Context) (QualificationRule, error)
}

type settingsService struct {
	settingRepo repositories.SettingRepository
	uploader    storage.FileUploader
	cache       *settingsCache
}

func NewSettingsService(settingRepo repositories.SettingRepository, uploader storage.FileUploader) SettingsService {
	return &settingsService{
		settingRepo: settingRepo,
		uploader:    uploader,
		cache:       newSettingsCache(settingsCacheTTL),
	}
}

func (s *settingsService) All(ctx context.Context) (map[string]string, error) {
	return s.cache.get(func() (map[string]string, error) {
		settings, err := s.settingRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		values := make(map[string]string, len(settings))
		for _, setting := range settings {
			values[setting.Key] = setting.Value
		}
		return values, nil
	})
}

func (s *settingsService) Update(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return ErrValidationFailed
	}
	if err := s.settingRepo.UpsertMany(ctx, nil, values); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

func (s *settingsService) UploadLogo(ctx context.Context, filename, contentType string, reader io.Reader) (string, error) {
	ext := path.Ext(filename)
	key := fmt.Sprintf("branding/logo-%d%s", time.Now().UnixNano(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	if err := s.settingRepo.UpsertMany(ctx, nil, map[string]string{
		models.SettingLogoURL: result.Location,
	}); err != nil {
		return "", err
	}
	s.cache.invalidate()

	return result.Location, nil
}

func (s *settingsService) QualificationRule(ctx context.Context) (QualificationRule, error) {
	rule := DefaultQualificationRule()
	values, err := s.All(ctx)
	if err != nil {
		return rule, err
	}

	if v, ok := parseSettingInt(values, models.SettingQualificationThreshold); ok {
		rule.Threshold = v
	}
	if v, ok := parseSettingInt(values, models.SettingQualificationSmall); ok {
		rule.Small = v
	}
	if v, ok := parseSettingInt(values, models.SettingQualificationLarge); ok {
		rule.Large = v
	}
	return rule, nil
}

func parseSettingInt(values map[string]string, key string) (int, bool) {
	raw, ok := values[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

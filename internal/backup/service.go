package backup

import (
	"context"
	"errors"
	"fmt"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"soulhealing/internal/storage"
	"soulhealing/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

// ErrInvalidBackup marks documents rejected before any data is touched.
var ErrInvalidBackup = errors.New("invalid backup document")

var requiredKeys = []string{models.TableCalendarEntries, models.TableNotes, models.TablePeople}

type ServiceInterface interface {
	Export(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) (*Delivery, error)
	Backup(ctx context.Context) (*Delivery, error)
	Import(ctx context.Context, data []byte) error
	Medium() Medium
}

type Service struct {
	store         storage.Store
	medium        Medium
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	maxImportSize int64
	now           func() time.Time
}

func NewService(conf *structures.Config, store storage.Store, medium Medium, logger providers.Logger, metrics providers.MetricsProviderInterface) *Service {
	return &Service{
		store:         store,
		medium:        medium,
		logger:        logger,
		metrics:       metrics,
		maxImportSize: conf.Backup.MaxImportSize,
		now:           time.Now,
	}
}

func (s *Service) Medium() Medium {
	return s.medium
}

// Export renders every record of every kind as one indented JSON document.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBackupDuration("export", time.Since(start)) }()

	backup, err := s.store.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	s.logger.Infof(providers.TypeBackup, "Exported %d calendar entries, %d notes, %d people",
		len(backup.CalendarEntries), len(backup.Notes), len(backup.People))
	return data, nil
}

// Save hands an exported document to the medium of the current runtime.
func (s *Service) Save(_ context.Context, data []byte) (*Delivery, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBackupDuration("save", time.Since(start)) }()

	delivery, err := s.medium.Deliver(FileName(s.now()), data)
	if err != nil {
		return nil, fmt.Errorf("save backup: %w", err)
	}
	if delivery.Path != "" {
		s.logger.Infof(providers.TypeBackup, "Backup written to %s", delivery.Path)
	} else {
		s.logger.Infof(providers.TypeBackup, "Backup %s prepared for download", delivery.FileName)
	}
	return delivery, nil
}

func (s *Service) Backup(ctx context.Context) (*Delivery, error) {
	data, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return s.Save(ctx, data)
}

// Parse decodes a backup document. All three collections must be present;
// an empty array is fine.
func Parse(data []byte) (*models.Backup, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackup, err)
	}
	for _, key := range requiredKeys {
		if _, ok := keys[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidBackup, key)
		}
	}

	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackup, err)
	}
	if err := backup.CheckIDs(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	return &backup, nil
}

// Import replaces the whole dataset with the document. The document is
// parsed completely before the store is touched.
func (s *Service) Import(ctx context.Context, data []byte) error {
	start := time.Now()
	defer func() { s.metrics.ObserveBackupDuration("import", time.Since(start)) }()

	if s.maxImportSize > 0 && int64(len(data)) > s.maxImportSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidBackup, len(data), s.maxImportSize)
	}

	backup, err := Parse(data)
	if err != nil {
		s.logger.Warnf(providers.TypeBackup, "Rejected backup: %s", err)
		return err
	}
	if err := s.store.Import(ctx, backup); err != nil {
		s.logger.Errorf(providers.TypeBackup, "Import failed, previous data kept: %s", err)
		return fmt.Errorf("import: %w", err)
	}
	s.logger.Infof(providers.TypeBackup, "Imported %d calendar entries, %d notes, %d people",
		len(backup.CalendarEntries), len(backup.Notes), len(backup.People))
	return nil
}

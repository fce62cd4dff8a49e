package storage

import (
	"context"
	"fmt"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"soulhealing/internal/storage/document"
	"soulhealing/internal/storage/relational"
	"soulhealing/internal/structures"
)

const (
	DriverRelational = relational.Name
	DriverDocument   = document.Name
)

// Store is the full persistence surface shared by both adapters.
type Store interface {
	Open(ctx context.Context) error
	Close() error
	Driver() string

	AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (*models.CalendarEntry, error)
	ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEntry, error)
	DeleteCalendarEntry(ctx context.Context, id int64) error

	AddNote(ctx context.Context, in models.NewNote) (*models.Note, error)
	ListNotes(ctx context.Context, filter models.Filter) ([]models.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	AddPerson(ctx context.Context, in models.NewPerson) (*models.Person, error)
	ListPeople(ctx context.Context, filter models.Filter) ([]models.Person, error)
	UpdatePersonForgiveness(ctx context.Context, id int64, forgiven bool) error
	DeletePerson(ctx context.Context, id int64) error

	Export(ctx context.Context) (*models.Backup, error)
	Import(ctx context.Context, backup *models.Backup) error
}

var (
	_ Store = (*relational.Store)(nil)
	_ Store = (*document.Store)(nil)
)

// DriverFor maps the storage config to an adapter name. An explicit driver
// wins; otherwise the runtime decides.
func DriverFor(conf *structures.Config) string {
	if conf.Storage.Driver != "" {
		return conf.Storage.Driver
	}
	if providers.DetectRuntime(conf.Storage.Runtime) == providers.RuntimeNative {
		return DriverRelational
	}
	return DriverDocument
}

// NewStore builds, opens and instruments the adapter for this process. The
// returned cleanup closes it.
func NewStore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Store, func(), error) {
	var adapter Store

	switch driver := DriverFor(conf); driver {
	case DriverRelational:
		adapter = relational.New(conf.Storage.SqlitePath, logger)
	case DriverDocument:
		compressor, err := document.NewZstdCompressor()
		if err != nil {
			return nil, nil, err
		}
		adapter = document.New(conf.Storage.DocumentPath, compressor, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	if err := adapter.Open(context.Background()); err != nil {
		_ = adapter.Close()
		return nil, nil, fmt.Errorf("open %s store: %w", adapter.Driver(), err)
	}

	store := NewInstrumentedStore(adapter, logger, metrics)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeStorage, "Error closing %s store: %s", store.Driver(), err)
		}
	}
	return store, cleanup, nil
}

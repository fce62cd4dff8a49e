package storage

import (
	"context"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"time"
)

// InstrumentedStore records latency and failures of every operation of the
// wrapped adapter. The per-kind record gauge reflects the dataset of the last
// successful export or import; plain adds and deletes do not move it.
type InstrumentedStore struct {
	inner   Store
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewInstrumentedStore(inner Store, logger providers.Logger, metrics providers.MetricsProviderInterface) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, logger: logger, metrics: metrics}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStorageDuration(s.inner.Driver(), op, time.Since(start), err)
	if err != nil {
		s.logger.Errorf(providers.TypeStorage, "%s %s failed: %s", s.inner.Driver(), op, err)
	}
}

func (s *InstrumentedStore) Open(ctx context.Context) error {
	return s.inner.Open(ctx)
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

func (s *InstrumentedStore) Driver() string {
	return s.inner.Driver()
}

func (s *InstrumentedStore) AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (_ *models.CalendarEntry, err error) {
	defer func(start time.Time) { s.observe("add_calendar_entry", start, err) }(time.Now())
	return s.inner.AddCalendarEntry(ctx, in)
}

func (s *InstrumentedStore) ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) (_ []models.CalendarEntry, err error) {
	defer func(start time.Time) { s.observe("list_calendar_entries", start, err) }(time.Now())
	return s.inner.ListCalendarEntries(ctx, filter)
}

func (s *InstrumentedStore) DeleteCalendarEntry(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_calendar_entry", start, err) }(time.Now())
	return s.inner.DeleteCalendarEntry(ctx, id)
}

func (s *InstrumentedStore) AddNote(ctx context.Context, in models.NewNote) (_ *models.Note, err error) {
	defer func(start time.Time) { s.observe("add_note", start, err) }(time.Now())
	return s.inner.AddNote(ctx, in)
}

func (s *InstrumentedStore) ListNotes(ctx context.Context, filter models.Filter) (_ []models.Note, err error) {
	defer func(start time.Time) { s.observe("list_notes", start, err) }(time.Now())
	return s.inner.ListNotes(ctx, filter)
}

func (s *InstrumentedStore) DeleteNote(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_note", start, err) }(time.Now())
	return s.inner.DeleteNote(ctx, id)
}

func (s *InstrumentedStore) AddPerson(ctx context.Context, in models.NewPerson) (_ *models.Person, err error) {
	defer func(start time.Time) { s.observe("add_person", start, err) }(time.Now())
	return s.inner.AddPerson(ctx, in)
}

func (s *InstrumentedStore) ListPeople(ctx context.Context, filter models.Filter) (_ []models.Person, err error) {
	defer func(start time.Time) { s.observe("list_people", start, err) }(time.Now())
	return s.inner.ListPeople(ctx, filter)
}

func (s *InstrumentedStore) UpdatePersonForgiveness(ctx context.Context, id int64, forgiven bool) (err error) {
	defer func(start time.Time) { s.observe("update_person_forgiveness", start, err) }(time.Now())
	return s.inner.UpdatePersonForgiveness(ctx, id, forgiven)
}

func (s *InstrumentedStore) DeletePerson(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_person", start, err) }(time.Now())
	return s.inner.DeletePerson(ctx, id)
}

func (s *InstrumentedStore) Export(ctx context.Context) (_ *models.Backup, err error) {
	defer func(start time.Time) { s.observe("export", start, err) }(time.Now())
	backup, err := s.inner.Export(ctx)
	if err == nil {
		for kind, count := range backup.Counts() {
			s.metrics.SetBackupRecords(kind, count)
		}
	}
	return backup, err
}

func (s *InstrumentedStore) Import(ctx context.Context, backup *models.Backup) (err error) {
	defer func(start time.Time) { s.observe("import", start, err) }(time.Now())
	if err = s.inner.Import(ctx, backup); err == nil {
		for kind, count := range backup.Counts() {
			s.metrics.SetBackupRecords(kind, count)
		}
	}
	return err
}

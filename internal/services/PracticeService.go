package services

import (
	"context"
	"errors"
	"fmt"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"soulhealing/internal/storage"
	"strings"
	"sync"
	"time"

	"github.com/gookit/validate"
)

const dateLayout = "2006-01-02"

// ErrInvalidInput wraps every validation failure so handlers can map it to
// a client error.
var ErrInvalidInput = errors.New("invalid input")

type PracticeServiceInterface interface {
	AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (*models.CalendarEntry, error)
	ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEntry, error)
	DeleteCalendarEntry(ctx context.Context, id int64) error
	MarkPractice(ctx context.Context, date string, exerciseID int) (*models.CalendarEntry, bool, error)
	EntryForDate(ctx context.Context, date string) (*models.CalendarEntry, error)

	AddNote(ctx context.Context, in models.NewNote) (*models.Note, error)
	ListNotes(ctx context.Context, filter models.Filter) ([]models.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	AddPerson(ctx context.Context, in models.NewPerson) (*models.Person, error)
	ListPeople(ctx context.Context, filter models.Filter) ([]models.Person, error)
	SetForgiven(ctx context.Context, id int64, forgiven bool) error
	DeletePerson(ctx context.Context, id int64) error
}

// PracticeService enforces the input rules the stores leave to their callers.
type PracticeService struct {
	store  storage.Store
	logger providers.Logger
	markMu sync.Mutex
}

func NewPracticeService(store storage.Store, logger providers.Logger) *PracticeService {
	return &PracticeService{store: store, logger: logger}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func checkStruct(in any) error {
	v := validate.Struct(in)
	if !v.Validate() {
		return invalid("%s", v.Errors.One())
	}
	return nil
}

func checkDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return invalid("%s must be a YYYY-MM-DD date, got %q", field, value)
	}
	return nil
}

func checkID(id int64) error {
	if id <= 0 {
		return invalid("id must be positive, got %d", id)
	}
	return nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *PracticeService) AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (*models.CalendarEntry, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Note = trimOptional(in.Note)
	if err := checkStruct(&in); err != nil {
		return nil, err
	}
	if err := checkDate("date", in.Date); err != nil {
		return nil, err
	}
	return s.store.AddCalendarEntry(ctx, in)
}

func (s *PracticeService) ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEntry, error) {
	if filter.From != "" {
		if err := checkDate("from", filter.From); err != nil {
			return nil, err
		}
	}
	if filter.To != "" {
		if err := checkDate("to", filter.To); err != nil {
			return nil, err
		}
	}
	return s.store.ListCalendarEntries(ctx, filter)
}

func (s *PracticeService) DeleteCalendarEntry(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeleteCalendarEntry(ctx, id)
}

// EntryForDate returns the newest entry logged on date, or nil.
func (s *PracticeService) EntryForDate(ctx context.Context, date string) (*models.CalendarEntry, error) {
	date = strings.TrimSpace(date)
	if err := checkDate("date", date); err != nil {
		return nil, err
	}
	entries, err := s.store.ListCalendarEntries(ctx, models.CalendarFilter{From: date, To: date})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// MarkPractice records that an exercise was completed on date unless that
// date already has an entry, in which case the existing entry is returned.
// The boolean reports whether a new entry was created.
func (s *PracticeService) MarkPractice(ctx context.Context, date string, exerciseID int) (*models.CalendarEntry, bool, error) {
	s.markMu.Lock()
	defer s.markMu.Unlock()

	existing, err := s.EntryForDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	note := fmt.Sprintf("Ejercicio %d completado", exerciseID)
	entry, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{
		Date:       date,
		ExerciseID: exerciseID,
		Note:       &note,
	})
	if err != nil {
		return nil, false, err
	}
	s.logger.Debugf(providers.TypeApp, "Practice of exercise %d marked for %s", exerciseID, entry.Date)
	return entry, true, nil
}

func (s *PracticeService) AddNote(ctx context.Context, in models.NewNote) (*models.Note, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := checkStruct(&in); err != nil {
		return nil, err
	}
	return s.store.AddNote(ctx, in)
}

func (s *PracticeService) ListNotes(ctx context.Context, filter models.Filter) ([]models.Note, error) {
	return s.store.ListNotes(ctx, filter)
}

func (s *PracticeService) DeleteNote(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeleteNote(ctx, id)
}

func (s *PracticeService) AddPerson(ctx context.Context, in models.NewPerson) (*models.Person, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = trimOptional(in.Notes)
	if err := checkStruct(&in); err != nil {
		return nil, err
	}
	return s.store.AddPerson(ctx, in)
}

func (s *PracticeService) ListPeople(ctx context.Context, filter models.Filter) ([]models.Person, error) {
	return s.store.ListPeople(ctx, filter)
}

func (s *PracticeService) SetForgiven(ctx context.Context, id int64, forgiven bool) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.UpdatePersonForgiveness(ctx, id, forgiven)
}

func (s *PracticeService) DeletePerson(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeletePerson(ctx, id)
}

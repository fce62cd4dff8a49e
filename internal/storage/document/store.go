package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Name identifies the adapter in logs, metrics and the health endpoint.
const Name = "document"

// Store keeps the three record kinds in indexed in-process collections
// backed by a snapshot file. An empty path keeps everything in memory.
type Store struct {
	path       string
	compressor Compressor
	logger     providers.Logger
	now        func() time.Time

	mu     sync.Mutex
	db     *Database
	closed bool
}

func New(path string, compressor Compressor, logger providers.Logger) *Store {
	return &Store{
		path:       path,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Store) Driver() string {
	return Name
}

func (s *Store) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.ErrClosed
	}
	if s.db != nil {
		return nil
	}

	var files *FileManager
	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
		files = NewFileManager(s.path, s.compressor, s.logger)
	}

	db := NewDatabase(files)
	if err := db.Load(); err != nil {
		return fmt.Errorf("load snapshot %s: %w", s.path, err)
	}

	s.db = db
	if s.path == "" {
		s.logger.Infof(providers.TypeStorage, "Document store opened in memory")
	} else {
		s.logger.Infof(providers.TypeStorage, "Document store opened at %s", s.path)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.compressor != nil {
		s.compressor.Close()
	}
	if s.db != nil {
		s.db = nil
		s.logger.Infof(providers.TypeStorage, "Document store closed")
	}
	return nil
}

func (s *Store) database() (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, models.ErrClosed
	}
	if s.db == nil {
		return nil, models.ErrNotInitialized
	}
	return s.db, nil
}

func (s *Store) timestamp() *string {
	ts := s.now().UTC().Format(time.RFC3339)
	return &ts
}

// stamp fills a missing timestamp the way the relational column default does.
func stamp(v, fallback *string) *string {
	if v == nil {
		return fallback
	}
	return v
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (s *Store) AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (*models.CalendarEntry, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var out models.CalendarEntry
	err = db.Update(ctx, func(tx *Tx) error {
		ts := s.timestamp()
		out = tx.calendar.insert(models.CalendarEntry{
			Date:       in.Date,
			ExerciseID: in.ExerciseID,
			Note:       copyString(in.Note),
			CreatedAt:  ts,
			UpdatedAt:  ts,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert calendar entry: %w", err)
	}
	return &out, nil
}

// ListCalendarEntries walks the by_date index from the newest date down, so
// the result is ordered by date and then id, both descending.
func (s *Store) ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEntry, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	entries := make([]models.CalendarEntry, 0)
	err = db.View(ctx, func(tx *Tx) error {
		candidates := tx.calendar.all
		if filter.ExerciseID != nil {
			candidates = tx.calendar.index(indexByExercise).lookup(exerciseKey(*filter.ExerciseID))
		}

		byDate := tx.calendar.index(indexByDate)
		keys := byDate.sortedKeys()
		for i := len(keys) - 1; i >= 0; i-- {
			date := keys[i]
			if filter.HasRange() && (date < filter.From || date > filter.To) {
				continue
			}
			ids := roaring64.And(byDate.lookup(date), candidates)
			entries = append(entries, tx.calendar.descending(ids)...)
		}
		return nil
	})
	return entries, err
}

func (s *Store) DeleteCalendarEntry(ctx context.Context, id int64) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	return db.Update(ctx, func(tx *Tx) error {
		tx.calendar.delete(id)
		return nil
	})
}

func (s *Store) AddNote(ctx context.Context, in models.NewNote) (*models.Note, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var out models.Note
	err = db.Update(ctx, func(tx *Tx) error {
		ts := s.timestamp()
		out = tx.notes.insert(models.Note{
			ExerciseID: in.ExerciseID,
			Content:    in.Content,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &out, nil
}

func (s *Store) ListNotes(ctx context.Context, filter models.Filter) ([]models.Note, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var notes []models.Note
	err = db.View(ctx, func(tx *Tx) error {
		candidates := tx.notes.all
		if filter.ExerciseID != nil {
			candidates = tx.notes.index(indexByExercise).lookup(exerciseKey(*filter.ExerciseID))
		}
		notes = tx.notes.descending(candidates)
		return nil
	})
	return notes, err
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	return db.Update(ctx, func(tx *Tx) error {
		tx.notes.delete(id)
		return nil
	})
}

func (s *Store) AddPerson(ctx context.Context, in models.NewPerson) (*models.Person, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var out models.Person
	err = db.Update(ctx, func(tx *Tx) error {
		ts := s.timestamp()
		out = tx.people.insert(models.Person{
			ExerciseID: in.ExerciseID,
			Name:       in.Name,
			Notes:      copyString(in.Notes),
			Forgiven:   in.Forgiven,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return &out, nil
}

// ListPeople walks the by_name index in ascending key order; people sharing
// a name come newest first.
func (s *Store) ListPeople(ctx context.Context, filter models.Filter) ([]models.Person, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	people := make([]models.Person, 0)
	err = db.View(ctx, func(tx *Tx) error {
		candidates := tx.people.all
		if filter.ExerciseID != nil {
			candidates = tx.people.index(indexByExercise).lookup(exerciseKey(*filter.ExerciseID))
		}

		byName := tx.people.index(indexByName)
		for _, name := range byName.sortedKeys() {
			ids := roaring64.And(byName.lookup(name), candidates)
			people = append(people, tx.people.descending(ids)...)
		}
		return nil
	})
	return people, err
}

// UpdatePersonForgiveness reads, merges and writes the record inside one
// Update, which holds the database write lock for the whole cycle.
func (s *Store) UpdatePersonForgiveness(ctx context.Context, id int64, forgiven bool) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	return db.Update(ctx, func(tx *Tx) error {
		person, ok := tx.people.get(id)
		if !ok {
			return nil
		}
		person.Forgiven = forgiven
		person.UpdatedAt = s.timestamp()
		tx.people.replace(person)
		return nil
	})
}

func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	db, err := s.database()
	if err != nil {
		return err
	}
	return db.Update(ctx, func(tx *Tx) error {
		tx.people.delete(id)
		return nil
	})
}

func (s *Store) Export(ctx context.Context) (*models.Backup, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	backup := &models.Backup{}
	err = db.View(ctx, func(tx *Tx) error {
		backup.CalendarEntries = tx.calendar.ascending()
		backup.Notes = tx.notes.ascending()
		backup.People = tx.people.ascending()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// Import clears all three collections and refills them with the backup rows
// in a single Update, so a failure anywhere keeps the previous dataset.
func (s *Store) Import(ctx context.Context, backup *models.Backup) error {
	if backup == nil {
		return errors.New("import: nil backup")
	}
	db, err := s.database()
	if err != nil {
		return err
	}

	entries := slices.Clone(backup.CalendarEntries)
	notes := slices.Clone(backup.Notes)
	people := slices.Clone(backup.People)
	ts := s.timestamp()
	for i := range entries {
		entries[i].CreatedAt, entries[i].UpdatedAt = stamp(entries[i].CreatedAt, ts), stamp(entries[i].UpdatedAt, ts)
	}
	for i := range notes {
		notes[i].CreatedAt, notes[i].UpdatedAt = stamp(notes[i].CreatedAt, ts), stamp(notes[i].UpdatedAt, ts)
	}
	for i := range people {
		people[i].CreatedAt, people[i].UpdatedAt = stamp(people[i].CreatedAt, ts), stamp(people[i].UpdatedAt, ts)
	}

	err = db.Update(ctx, func(tx *Tx) error {
		tx.calendar.clear()
		tx.notes.clear()
		tx.people.clear()
		return fill(tx, entries, notes, people)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.logger.Infof(providers.TypeStorage, "Imported %d calendar entries, %d notes, %d people",
		len(backup.CalendarEntries), len(backup.Notes), len(backup.People))
	return nil
}

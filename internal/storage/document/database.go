package document

import (
	"context"
	"soulhealing/internal/models"
	"strconv"
	"sync"
)

const (
	indexByExercise = "by_exercise"
	indexByDate     = "by_date"
	indexByName     = "by_name"
)

// Tx is the state visible to one View or Update call.
type Tx struct {
	calendar *collection[models.CalendarEntry]
	notes    *collection[models.Note]
	people   *collection[models.Person]
}

func exerciseKey(id int) string {
	return strconv.Itoa(id)
}

func newTx() *Tx {
	return &Tx{
		calendar: newCollection(models.TableCalendarEntries,
			func(e *models.CalendarEntry) *int64 { return &e.ID },
			detachEntry,
			map[string]func(*models.CalendarEntry) string{
				indexByExercise: func(e *models.CalendarEntry) string { return exerciseKey(e.ExerciseID) },
				indexByDate:     func(e *models.CalendarEntry) string { return e.Date },
			}),
		notes: newCollection(models.TableNotes,
			func(n *models.Note) *int64 { return &n.ID },
			detachNote,
			map[string]func(*models.Note) string{
				indexByExercise: func(n *models.Note) string { return exerciseKey(n.ExerciseID) },
			}),
		people: newCollection(models.TablePeople,
			func(p *models.Person) *int64 { return &p.ID },
			detachPerson,
			map[string]func(*models.Person) string{
				indexByExercise: func(p *models.Person) string { return exerciseKey(p.ExerciseID) },
				indexByName:     func(p *models.Person) string { return p.Name },
			}),
	}
}

func detachEntry(e models.CalendarEntry) models.CalendarEntry {
	e.Note = copyString(e.Note)
	e.CreatedAt, e.UpdatedAt = copyString(e.CreatedAt), copyString(e.UpdatedAt)
	return e
}

func detachNote(n models.Note) models.Note {
	n.CreatedAt, n.UpdatedAt = copyString(n.CreatedAt), copyString(n.UpdatedAt)
	return n
}

func detachPerson(p models.Person) models.Person {
	p.Notes = copyString(p.Notes)
	p.CreatedAt, p.UpdatedAt = copyString(p.CreatedAt), copyString(p.UpdatedAt)
	return p
}

func (t *Tx) clone() *Tx {
	return &Tx{
		calendar: t.calendar.clone(),
		notes:    t.notes.clone(),
		people:   t.people.clone(),
	}
}

// Database holds the live state. Readers share it under a read lock; writers
// work on a private copy that replaces the live state only after it has been
// persisted.
type Database struct {
	mu    sync.RWMutex
	state *Tx
	files *FileManager
}

func NewDatabase(files *FileManager) *Database {
	return &Database{state: newTx(), files: files}
}

// Load replaces the live state with the snapshot on disk, if there is one.
func (d *Database) Load() error {
	if d.files == nil {
		return nil
	}
	snap, err := d.files.LoadFromFile()
	if err != nil || snap == nil {
		return err
	}
	state, err := snap.restore()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
	return nil
}

func (d *Database) View(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(d.state)
}

// Update is all-or-nothing: if fn or the snapshot write fails, the live
// state is left untouched.
func (d *Database) Update(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	if d.files != nil {
		if err := d.files.SaveToFile(newSnapshot(next)); err != nil {
			return err
		}
	}
	d.state = next
	return nil
}

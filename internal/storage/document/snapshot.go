package document

import (
	"fmt"
	"soulhealing/internal/models"
)

const snapshotVersion = 1

// snapshot is the on-disk image of a database. Indexes are rebuilt on load.
type snapshot struct {
	Version         int                    `json:"version"`
	Sequences       map[string]int64       `json:"sequences"`
	CalendarEntries []models.CalendarEntry `json:"calendar_entries"`
	Notes           []models.Note          `json:"notes"`
	People          []models.Person        `json:"people"`
}

func newSnapshot(t *Tx) *snapshot {
	return &snapshot{
		Version: snapshotVersion,
		Sequences: map[string]int64{
			models.TableCalendarEntries: t.calendar.lastID,
			models.TableNotes:           t.notes.lastID,
			models.TablePeople:          t.people.lastID,
		},
		CalendarEntries: t.calendar.ascending(),
		Notes:           t.notes.ascending(),
		People:          t.people.ascending(),
	}
}

func (s *snapshot) restore() (*Tx, error) {
	if s.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", s.Version, snapshotVersion)
	}
	t := newTx()
	if err := fill(t, s.CalendarEntries, s.Notes, s.People); err != nil {
		return nil, err
	}
	// sequences never move backwards, even when the newest rows were deleted
	t.calendar.lastID = max(t.calendar.lastID, s.Sequences[models.TableCalendarEntries])
	t.notes.lastID = max(t.notes.lastID, s.Sequences[models.TableNotes])
	t.people.lastID = max(t.people.lastID, s.Sequences[models.TablePeople])
	return t, nil
}

func fill(t *Tx, entries []models.CalendarEntry, notes []models.Note, people []models.Person) error {
	for _, e := range entries {
		if err := t.calendar.put(e); err != nil {
			return err
		}
	}
	for _, n := range notes {
		if err := t.notes.put(n); err != nil {
			return err
		}
	}
	for _, p := range people {
		if err := t.people.put(p); err != nil {
			return err
		}
	}
	return nil
}

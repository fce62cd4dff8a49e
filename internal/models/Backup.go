package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Backup is the full-dataset document produced by export and consumed by import.
type Backup struct {
	CalendarEntries []CalendarEntry `json:"calendar_entries"`
	Notes           []Note          `json:"notes"`
	People          []Person        `json:"people"`
}

// MarshalJSON renders missing collections as empty arrays instead of null.
func (b Backup) MarshalJSON() ([]byte, error) {
	type alias Backup
	out := alias(b)
	if out.CalendarEntries == nil {
		out.CalendarEntries = []CalendarEntry{}
	}
	if out.Notes == nil {
		out.Notes = []Note{}
	}
	if out.People == nil {
		out.People = []Person{}
	}
	return json.Marshal(out)
}

func (b *Backup) Counts() map[string]int {
	return map[string]int{
		TableCalendarEntries: len(b.CalendarEntries),
		TableNotes:           len(b.Notes),
		TablePeople:          len(b.People),
	}
}

// CheckIDs rejects a document holding a record with a non-positive id.
func (b *Backup) CheckIDs() error {
	for _, e := range b.CalendarEntries {
		if e.ID <= 0 {
			return fmt.Errorf("%s: %w, got %d", TableCalendarEntries, ErrInvalidID, e.ID)
		}
	}
	for _, n := range b.Notes {
		if n.ID <= 0 {
			return fmt.Errorf("%s: %w, got %d", TableNotes, ErrInvalidID, n.ID)
		}
	}
	for _, p := range b.People {
		if p.ID <= 0 {
			return fmt.Errorf("%s: %w, got %d", TablePeople, ErrInvalidID, p.ID)
		}
	}
	return nil
}

package relational

import (
	"context"
	"errors"
	"fmt"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
)

// Export reads every row of every table in id order.
func (s *Store) Export(ctx context.Context) (*models.Backup, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	backup := &models.Backup{}
	if backup.CalendarEntries, err = queryCalendarEntries(ctx, tx, "SELECT "+calendarColumns+" FROM calendar_entries ORDER BY id"); err != nil {
		return nil, err
	}
	if backup.Notes, err = queryNotes(ctx, tx, "SELECT "+noteColumns+" FROM notes ORDER BY id"); err != nil {
		return nil, err
	}
	if backup.People, err = queryPeople(ctx, tx, "SELECT "+personColumns+" FROM people ORDER BY id"); err != nil {
		return nil, err
	}
	return backup, nil
}

// Import replaces the whole dataset inside one transaction. Rows keep their
// original ids. Any failure rolls back and leaves the previous data intact.
func (s *Store) Import(ctx context.Context, backup *models.Backup) (err error) {
	if backup == nil {
		return errors.New("import: nil backup")
	}
	if err := backup.CheckIDs(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Errorf(providers.TypeStorage, "Import rollback failed: %s", rbErr)
			}
		}
	}()

	for _, table := range []string{models.TableCalendarEntries, models.TableNotes, models.TablePeople} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, e := range backup.CalendarEntries {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO calendar_entries (id, date, exercise_id, note, created_at, updated_at) VALUES (?, ?, ?, ?, COALESCE(?, datetime('now')), COALESCE(?, datetime('now')))",
			e.ID, e.Date, e.ExerciseID, e.Note, e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("import calendar entry %d: %w", e.ID, err)
		}
	}
	for _, n := range backup.Notes {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO notes (id, exercise_id, content, created_at, updated_at) VALUES (?, ?, ?, COALESCE(?, datetime('now')), COALESCE(?, datetime('now')))",
			n.ID, n.ExerciseID, n.Content, n.CreatedAt, n.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("import note %d: %w", n.ID, err)
		}
	}
	for _, p := range backup.People {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (id, exercise_id, name, notes, forgiven, created_at, updated_at) VALUES (?, ?, ?, ?, ?, COALESCE(?, datetime('now')), COALESCE(?, datetime('now')))",
			p.ID, p.ExerciseID, p.Name, p.Notes, boolToInt(p.Forgiven), p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("import person %d: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.logger.Infof(providers.TypeStorage, "Imported %d calendar entries, %d notes, %d people",
		len(backup.CalendarEntries), len(backup.Notes), len(backup.People))
	return nil
}

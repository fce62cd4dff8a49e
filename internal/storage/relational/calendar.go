package relational

import (
	"context"
	"database/sql"
	"fmt"
	"soulhealing/internal/models"
	"strings"
)

const calendarColumns = "id, date, exercise_id, note, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanCalendarEntry(row scanner) (models.CalendarEntry, error) {
	var e models.CalendarEntry
	err := row.Scan(&e.ID, &e.Date, &e.ExerciseID, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *Store) AddCalendarEntry(ctx context.Context, in models.NewCalendarEntry) (*models.CalendarEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"INSERT INTO calendar_entries (date, exercise_id, note) VALUES (?, ?, ?) RETURNING "+calendarColumns,
		in.Date, in.ExerciseID, in.Note,
	)
	entry, err := scanCalendarEntry(row)
	if err != nil {
		return nil, fmt.Errorf("insert calendar entry: %w", err)
	}
	return &entry, nil
}

func (s *Store) ListCalendarEntries(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.ExerciseID != nil {
		where = append(where, "exercise_id = ?")
		args = append(args, *filter.ExerciseID)
	}
	if filter.HasRange() {
		where = append(where, "date BETWEEN ? AND ?")
		args = append(args, filter.From, filter.To)
	}

	query := "SELECT " + calendarColumns + " FROM calendar_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	return queryCalendarEntries(ctx, db, query, args...)
}

func queryCalendarEntries(ctx context.Context, q querier, query string, args ...any) ([]models.CalendarEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.CalendarEntry, 0)
	for rows.Next() {
		entry, err := scanCalendarEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteCalendarEntry(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, models.TableCalendarEntries, id)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// deleteByID removes at most one row. A missing id is not an error.
func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

package relational

import (
	"context"
	"fmt"
	"soulhealing/internal/models"
)

const noteColumns = "id, exercise_id, content, created_at, updated_at"

func scanNote(row scanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.ExerciseID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (s *Store) AddNote(ctx context.Context, in models.NewNote) (*models.Note, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"INSERT INTO notes (exercise_id, content) VALUES (?, ?) RETURNING "+noteColumns,
		in.ExerciseID, in.Content,
	)
	note, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &note, nil
}

func (s *Store) ListNotes(ctx context.Context, filter models.Filter) ([]models.Note, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + noteColumns + " FROM notes"
	var args []any
	if filter.ExerciseID != nil {
		query += " WHERE exercise_id = ?"
		args = append(args, *filter.ExerciseID)
	}
	query += " ORDER BY id DESC"

	return queryNotes(ctx, db, query, args...)
}

func queryNotes(ctx context.Context, q querier, query string, args ...any) ([]models.Note, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, models.TableNotes, id)
}

package relational

import (
	"context"
	"fmt"
	"soulhealing/internal/models"
)

const personColumns = "id, exercise_id, name, notes, forgiven, created_at, updated_at"

func scanPerson(row scanner) (models.Person, error) {
	var (
		p        models.Person
		forgiven int
	)
	err := row.Scan(&p.ID, &p.ExerciseID, &p.Name, &p.Notes, &forgiven, &p.CreatedAt, &p.UpdatedAt)
	p.Forgiven = forgiven != 0
	return p, err
}

func (s *Store) AddPerson(ctx context.Context, in models.NewPerson) (*models.Person, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"INSERT INTO people (exercise_id, name, notes, forgiven) VALUES (?, ?, ?, ?) RETURNING "+personColumns,
		in.ExerciseID, in.Name, in.Notes, boolToInt(in.Forgiven),
	)
	person, err := scanPerson(row)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	return &person, nil
}

func (s *Store) ListPeople(ctx context.Context, filter models.Filter) ([]models.Person, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + personColumns + " FROM people"
	var args []any
	if filter.ExerciseID != nil {
		query += " WHERE exercise_id = ?"
		args = append(args, *filter.ExerciseID)
	}
	query += " ORDER BY name ASC, id DESC"

	return queryPeople(ctx, db, query, args...)
}

func queryPeople(ctx context.Context, q querier, query string, args ...any) ([]models.Person, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	people := make([]models.Person, 0)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, person)
	}
	return people, rows.Err()
}

// UpdatePersonForgiveness sets the flag in a single statement, so concurrent
// callers cannot lose each other's update. A missing id changes nothing.
func (s *Store) UpdatePersonForgiveness(ctx context.Context, id int64, forgiven bool) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"UPDATE people SET forgiven = ?, updated_at = datetime('now') WHERE id = ?",
		boolToInt(forgiven), id,
	)
	if err != nil {
		return fmt.Errorf("update person %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, models.TablePeople, id)
}

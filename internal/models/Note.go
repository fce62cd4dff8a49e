package models

import json "github.com/goccy/go-json"

// Note is a free-text journal entry tied to one exercise.
type Note struct {
	ID         int64   `json:"id"`
	ExerciseID int     `json:"exercise_id"`
	Content    string  `json:"content"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
}

type NewNote struct {
	ExerciseID int    `json:"exercise_id" validate:"required|min:1"`
	Content    string `json:"content" validate:"required"`
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	aux := struct {
		*alias
		LegacyExerciseID *int `json:"exerciseId"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ExerciseID = pickExerciseID(n.ExerciseID, aux.LegacyExerciseID)
	return nil
}

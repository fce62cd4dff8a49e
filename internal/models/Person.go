package models

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Person is someone the user practices forgiveness toward within one exercise.
// Forgiven is the only field that changes after creation.
type Person struct {
	ID         int64   `json:"id"`
	ExerciseID int     `json:"exercise_id"`
	Name       string  `json:"name"`
	Notes      *string `json:"notes"`
	Forgiven   bool    `json:"forgiven"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
}

type NewPerson struct {
	ExerciseID int     `json:"exercise_id" validate:"required|min:1"`
	Name       string  `json:"name" validate:"required"`
	Notes      *string `json:"notes"`
	Forgiven   bool    `json:"forgiven"`
}

// UnmarshalJSON accepts forgiven as a boolean, 0/1 or null, and the legacy
// exerciseId key.
func (p *Person) UnmarshalJSON(data []byte) error {
	type alias Person
	aux := struct {
		*alias
		Forgiven         json.RawMessage `json:"forgiven"`
		LegacyExerciseID *int            `json:"exerciseId"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	forgiven, err := parseFlag(aux.Forgiven)
	if err != nil {
		return err
	}
	p.Forgiven = forgiven
	p.ExerciseID = pickExerciseID(p.ExerciseID, aux.LegacyExerciseID)
	return nil
}

func parseFlag(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid forgiven value %s", raw)
}

func pickExerciseID(current int, legacy *int) int {
	if current == 0 && legacy != nil {
		return *legacy
	}
	return current
}

package models

import json "github.com/goccy/go-json"

// CalendarEntry is a practice session logged against a calendar date.
type CalendarEntry struct {
	ID         int64   `json:"id"`
	Date       string  `json:"date"`
	ExerciseID int     `json:"exercise_id"`
	Note       *string `json:"note"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
}

type NewCalendarEntry struct {
	Date       string  `json:"date" validate:"required"`
	ExerciseID int     `json:"exercise_id" validate:"required|min:1"`
	Note       *string `json:"note"`
}

func (c *CalendarEntry) UnmarshalJSON(data []byte) error {
	type alias CalendarEntry
	aux := struct {
		*alias
		LegacyExerciseID *int `json:"exerciseId"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ExerciseID = pickExerciseID(c.ExerciseID, aux.LegacyExerciseID)
	return nil
}

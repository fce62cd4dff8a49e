package models

// Filter narrows note and people listings. A nil ExerciseID lists everything.
type Filter struct {
	ExerciseID *int
}

// CalendarFilter narrows calendar listings. The date range is inclusive and
// only applied when both From and To are set.
type CalendarFilter struct {
	ExerciseID *int
	From       string
	To         string
}

func (f CalendarFilter) HasRange() bool {
	return f.From != "" && f.To != ""
}

func ExerciseFilter(exerciseID int) Filter {
	return Filter{ExerciseID: &exerciseID}
}

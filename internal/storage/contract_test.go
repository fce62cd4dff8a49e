package storage

import (
	"context"
	"path/filepath"
	"soulhealing/internal/models"
	"soulhealing/internal/storage/document"
	"soulhealing/internal/storage/relational"
	"soulhealing/internal/testutil"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adapterFactory struct {
	name string
	new  func(t *testing.T) Store
}

func adapters() []adapterFactory {
	return []adapterFactory{
		{name: DriverRelational, new: func(t *testing.T) Store {
			return relational.New(filepath.Join(t.TempDir(), "test.db"), &testutil.MockLogger{})
		}},
		{name: DriverDocument, new: func(t *testing.T) Store {
			compressor, err := document.NewZstdCompressor()
			require.NoError(t, err)
			return document.New(filepath.Join(t.TempDir(), "test.snap"), compressor, &testutil.MockLogger{})
		}},
	}
}

func openStore(t *testing.T, f adapterFactory) Store {
	t.Helper()
	s := f.new(t)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// forEachAdapter runs the same test body against every adapter.
func forEachAdapter(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, f := range adapters() {
		t.Run(f.name, func(t *testing.T) {
			fn(t, openStore(t, f))
		})
	}
}

func strPtr(s string) *string { return &s }

func dates(entries []models.CalendarEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Date
	}
	return out
}

func names(people []models.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func contents(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Content
	}
	return out
}

func TestStore_NotInitializedBeforeOpen(t *testing.T) {
	ctx := context.Background()
	for _, f := range adapters() {
		t.Run(f.name, func(t *testing.T) {
			s := f.new(t)
			_, err := s.ListNotes(ctx, models.Filter{})
			assert.ErrorIs(t, err, models.ErrNotInitialized)
			_, err = s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Ana"})
			assert.ErrorIs(t, err, models.ErrNotInitialized)
			assert.ErrorIs(t, s.Import(ctx, &models.Backup{}), models.ErrNotInitialized)
		})
	}
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		_, err := s.AddNote(ctx, models.NewNote{ExerciseID: 1, Content: "first"})
		require.NoError(t, err)

		require.NoError(t, s.Open(ctx))

		notes, err := s.ListNotes(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})
}

func TestStore_ClosedRejectsOperations(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err := s.ListPeople(ctx, models.Filter{})
		assert.ErrorIs(t, err, models.ErrClosed)
		assert.ErrorIs(t, s.Open(ctx), models.ErrClosed)
	})
}

func TestStore_AddCalendarEntryReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		entry, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 2, Note: strPtr("done")})
		require.NoError(t, err)

		assert.Positive(t, entry.ID)
		assert.Equal(t, "2024-03-01", entry.Date)
		assert.Equal(t, 2, entry.ExerciseID)
		require.NotNil(t, entry.Note)
		assert.Equal(t, "done", *entry.Note)
		assert.NotNil(t, entry.CreatedAt)
		assert.NotNil(t, entry.UpdatedAt)

		second, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-02", ExerciseID: 2})
		require.NoError(t, err)
		assert.Greater(t, second.ID, entry.ID)
		assert.Nil(t, second.Note)
	})
}

func TestStore_CalendarOrdering(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		for _, d := range []string{"2024-01-01", "2024-01-03", "2024-01-02"} {
			_, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: d, ExerciseID: 1})
			require.NoError(t, err)
		}

		entries, err := s.ListCalendarEntries(ctx, models.CalendarFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, dates(entries))
	})
}

func TestStore_CalendarSameDateNewestFirst(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		first, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-01-01", ExerciseID: 1})
		require.NoError(t, err)
		second, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-01-01", ExerciseID: 1})
		require.NoError(t, err)

		entries, err := s.ListCalendarEntries(ctx, models.CalendarFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.ID, entries[0].ID)
		assert.Equal(t, first.ID, entries[1].ID)
	})
}

func TestStore_CalendarFilters(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		seed := []models.NewCalendarEntry{
			{Date: "2024-02-27", ExerciseID: 1},
			{Date: "2024-02-28", ExerciseID: 2},
			{Date: "2024-03-01", ExerciseID: 1},
			{Date: "2024-03-05", ExerciseID: 1},
			{Date: "2024-03-10", ExerciseID: 2},
		}
		for _, in := range seed {
			_, err := s.AddCalendarEntry(ctx, in)
			require.NoError(t, err)
		}
		one := 1

		tests := []struct {
			name     string
			filter   models.CalendarFilter
			expected []string
		}{
			{"all", models.CalendarFilter{}, []string{"2024-03-10", "2024-03-05", "2024-03-01", "2024-02-28", "2024-02-27"}},
			{"exercise", models.CalendarFilter{ExerciseID: &one}, []string{"2024-03-05", "2024-03-01", "2024-02-27"}},
			{"inclusive range", models.CalendarFilter{From: "2024-02-28", To: "2024-03-05"}, []string{"2024-03-05", "2024-03-01", "2024-02-28"}},
			{"exercise and range", models.CalendarFilter{ExerciseID: &one, From: "2024-02-28", To: "2024-03-05"}, []string{"2024-03-05", "2024-03-01"}},
			{"only from ignored", models.CalendarFilter{From: "2024-03-06"}, []string{"2024-03-10", "2024-03-05", "2024-03-01", "2024-02-28", "2024-02-27"}},
			{"only to ignored", models.CalendarFilter{ExerciseID: &one, To: "2024-01-01"}, []string{"2024-03-05", "2024-03-01", "2024-02-27"}},
			{"empty range", models.CalendarFilter{From: "2025-01-01", To: "2025-12-31"}, []string{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				entries, err := s.ListCalendarEntries(ctx, tt.filter)
				require.NoError(t, err)
				assert.NotNil(t, entries)
				assert.Equal(t, tt.expected, dates(entries))
			})
		}
	})
}

func TestStore_DuplicateDatesAreNotPrevented(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		filter := models.CalendarFilter{ExerciseID: new(int)}
		*filter.ExerciseID = 2

		_, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 2})
		require.NoError(t, err)
		entries, err := s.ListCalendarEntries(ctx, filter)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "2024-03-01", entries[0].Date)

		_, err = s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 2})
		require.NoError(t, err)
		entries, err = s.ListCalendarEntries(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestStore_DeleteCalendarEntry(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		entry, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 1})
		require.NoError(t, err)

		require.NoError(t, s.DeleteCalendarEntry(ctx, entry.ID))
		require.NoError(t, s.DeleteCalendarEntry(ctx, entry.ID))

		entries, err := s.ListCalendarEntries(ctx, models.CalendarFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStore_NotesNewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		for i, c := range []string{"a", "b", "c"} {
			_, err := s.AddNote(ctx, models.NewNote{ExerciseID: i%2 + 1, Content: c})
			require.NoError(t, err)
		}

		all, err := s.ListNotes(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, contents(all))

		filtered, err := s.ListNotes(ctx, models.ExerciseFilter(1))
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, contents(filtered))

		none, err := s.ListNotes(ctx, models.ExerciseFilter(9))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestStore_PeopleFilteredByExerciseInNameOrder(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		seed := []models.NewPerson{
			{ExerciseID: 1, Name: "Zoe"},
			{ExerciseID: 1, Name: "Ana"},
			{ExerciseID: 2, Name: "Bea"},
		}
		for _, in := range seed {
			_, err := s.AddPerson(ctx, in)
			require.NoError(t, err)
		}

		people, err := s.ListPeople(ctx, models.ExerciseFilter(1))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana", "Zoe"}, names(people))

		all, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana", "Bea", "Zoe"}, names(all))
	})
}

func TestStore_PeopleSameNameNewestFirst(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		older, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Luis"})
		require.NoError(t, err)
		newer, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Luis", Notes: strPtr("brother")})
		require.NoError(t, err)

		people, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, people, 2)
		assert.Equal(t, newer.ID, people[0].ID)
		assert.Equal(t, older.ID, people[1].ID)
		require.NotNil(t, people[0].Notes)
		assert.Equal(t, "brother", *people[0].Notes)
	})
}

func TestStore_ForgivenessToggleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		person, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Ana"})
		require.NoError(t, err)
		assert.False(t, person.Forgiven)

		require.NoError(t, s.UpdatePersonForgiveness(ctx, person.ID, true))
		require.NoError(t, s.UpdatePersonForgiveness(ctx, person.ID, true))

		people, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, person.ID, people[0].ID)
		assert.True(t, people[0].Forgiven)
		assert.Equal(t, "Ana", people[0].Name)

		require.NoError(t, s.UpdatePersonForgiveness(ctx, person.ID, false))
		people, err = s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		assert.False(t, people[0].Forgiven)
	})
}

func TestStore_MissingIdsAreSilent(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		_, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Ana"})
		require.NoError(t, err)
		before, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)

		assert.NoError(t, s.DeletePerson(ctx, 9999))
		assert.NoError(t, s.UpdatePersonForgiveness(ctx, 9999, true))
		assert.NoError(t, s.DeleteNote(ctx, 9999))
		assert.NoError(t, s.DeleteCalendarEntry(ctx, 9999))

		after, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestStore_BackendParity(t *testing.T) {
	ctx := context.Background()
	results := make(map[string][]string)

	for _, f := range adapters() {
		s := openStore(t, f)
		var ids []int64
		for _, c := range []string{"one", "two", "three"} {
			n, err := s.AddNote(ctx, models.NewNote{ExerciseID: 3, Content: c})
			require.NoError(t, err)
			ids = append(ids, n.ID)
		}
		require.NoError(t, s.DeleteNote(ctx, ids[1]))

		notes, err := s.ListNotes(ctx, models.Filter{})
		require.NoError(t, err)
		results[f.name] = contents(notes)
	}

	assert.Equal(t, []string{"three", "one"}, results[DriverRelational])
	assert.Equal(t, results[DriverRelational], results[DriverDocument])
}

func seedDataset(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 1, Note: strPtr("Ejercicio 1 completado")})
	require.NoError(t, err)
	_, err = s.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-02", ExerciseID: 2})
	require.NoError(t, err)
	_, err = s.AddNote(ctx, models.NewNote{ExerciseID: 1, Content: "gratitude"})
	require.NoError(t, err)
	p, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Ana", Notes: strPtr("sister")})
	require.NoError(t, err)
	require.NoError(t, s.UpdatePersonForgiveness(ctx, p.ID, true))
	_, err = s.AddPerson(ctx, models.NewPerson{ExerciseID: 2, Name: "Bruno"})
	require.NoError(t, err)
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		seedDataset(t, s)
		exported, err := s.Export(ctx)
		require.NoError(t, err)

		_, err = s.AddNote(ctx, models.NewNote{ExerciseID: 5, Content: "after export"})
		require.NoError(t, err)

		require.NoError(t, s.Import(ctx, exported))

		reexported, err := s.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, exported, reexported)
	})
}

func TestStore_ImportReplacesWholeDataset(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		seedDataset(t, s)

		backup := &models.Backup{
			Notes: []models.Note{{ID: 40, ExerciseID: 7, Content: "restored"}},
		}
		require.NoError(t, s.Import(ctx, backup))

		entries, err := s.ListCalendarEntries(ctx, models.CalendarFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
		people, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Empty(t, people)

		notes, err := s.ListNotes(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, int64(40), notes[0].ID)
		assert.Equal(t, "restored", notes[0].Content)
		assert.NotNil(t, notes[0].CreatedAt)

		// new records never reuse an imported id
		n, err := s.AddNote(ctx, models.NewNote{ExerciseID: 7, Content: "next"})
		require.NoError(t, err)
		assert.Greater(t, n.ID, int64(40))
	})
}

func TestStore_FailedImportKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		seedDataset(t, s)
		before, err := s.Export(ctx)
		require.NoError(t, err)

		// calendar rows are fine, the second collection carries a duplicate id
		bad := &models.Backup{
			CalendarEntries: []models.CalendarEntry{{ID: 1, Date: "2030-01-01", ExerciseID: 9}},
			Notes: []models.Note{
				{ID: 5, ExerciseID: 1, Content: "x"},
				{ID: 5, ExerciseID: 1, Content: "y"},
			},
		}
		assert.Error(t, s.Import(ctx, bad))

		after, err := s.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestStore_ImportRejectsNonPositiveIds(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		backup *models.Backup
	}{
		{"negative note", &models.Backup{Notes: []models.Note{
			{ID: -5, ExerciseID: 1, Content: "a"},
			{ID: 3, ExerciseID: 1, Content: "b"},
		}}},
		{"zero note", &models.Backup{Notes: []models.Note{
			{ID: 3, ExerciseID: 1, Content: "b"},
			{ID: 0, ExerciseID: 1, Content: "c"},
		}}},
		{"negative calendar entry", &models.Backup{CalendarEntries: []models.CalendarEntry{
			{ID: -1, Date: "2024-01-01", ExerciseID: 1},
		}}},
		{"zero person", &models.Backup{People: []models.Person{{ID: 0, ExerciseID: 1, Name: "Ana"}}}},
	}
	forEachAdapter(t, func(t *testing.T, s Store) {
		seedDataset(t, s)
		before, err := s.Export(ctx)
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.ErrorIs(t, s.Import(ctx, tt.backup), models.ErrInvalidID)

				after, err := s.Export(ctx)
				require.NoError(t, err)
				assert.Equal(t, before, after)
			})
		}
	})
}

func TestStore_CrossAdapterRestore(t *testing.T) {
	ctx := context.Background()
	all := adapters()
	relationalStore := openStore(t, all[0])
	documentStore := openStore(t, all[1])

	seedDataset(t, relationalStore)
	exported, err := relationalStore.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, documentStore.Import(ctx, exported))

	fromRelational, err := relationalStore.ListPeople(ctx, models.Filter{})
	require.NoError(t, err)
	fromDocument, err := documentStore.ListPeople(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, fromRelational, fromDocument)

	back, err := documentStore.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, exported, back)
}

func TestStore_ConcurrentForgivenessUpdates(t *testing.T) {
	ctx := context.Background()
	forEachAdapter(t, func(t *testing.T, s Store) {
		var ids []int64
		for _, name := range []string{"A", "B", "C", "D"} {
			p, err := s.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: name})
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				assert.NoError(t, s.UpdatePersonForgiveness(ctx, id, true))
			}(id)
		}
		wg.Wait()

		people, err := s.ListPeople(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, people, 4)
		for _, p := range people {
			assert.True(t, p.Forgiven, p.Name)
		}
	})
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"soulhealing/internal/models"
	"soulhealing/internal/services"
	"soulhealing/internal/storage/document"
	"soulhealing/internal/testutil"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newMemoryStore(t *testing.T) *document.Store {
	t.Helper()
	store := document.New("", nil, &testutil.MockLogger{})
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestController(t *testing.T) (*ApiController, *document.Store, *testutil.MockListCache) {
	t.Helper()
	store := newMemoryStore(t)
	cache := testutil.NewMockListCache()
	svc := services.NewPracticeService(store, &testutil.MockLogger{})
	return NewApiController(&testutil.MockLogger{}, svc, cache), store, cache
}

func request(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req
}

func withID(req *http.Request, id int64) *http.Request {
	req.SetPathValue("id", strconv.FormatInt(id, 10))
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// --- calendar ---

func TestAddCalendarEntry_Created(t *testing.T) {
	ac, store, _ := newTestController(t)

	rr := httptest.NewRecorder()
	ac.AddCalendarEntry(rr, request(http.MethodPost, "/api/calendar", `{"date":"2024-03-01","exercise_id":2,"note":"hi"}`))

	assert.Equal(t, http.StatusCreated, rr.Code)
	entry := decode[models.CalendarEntry](t, rr)
	assert.Positive(t, entry.ID)
	assert.Equal(t, 2, entry.ExerciseID)

	entries, err := store.ListCalendarEntries(context.Background(), models.CalendarFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAddCalendarEntry_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"date":`},
		{"invalid date", `{"date":"tomorrow","exercise_id":1}`},
		{"missing exercise", `{"date":"2024-03-01"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, _, _ := newTestController(t)
			rr := httptest.NewRecorder()
			ac.AddCalendarEntry(rr, request(http.MethodPost, "/api/calendar", tt.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestListCalendarEntries_FiltersAndCaches(t *testing.T) {
	ac, store, cache := newTestController(t)
	ctx := context.Background()
	for _, in := range []models.NewCalendarEntry{
		{Date: "2024-03-01", ExerciseID: 1},
		{Date: "2024-03-02", ExerciseID: 2},
		{Date: "2024-03-03", ExerciseID: 1},
	} {
		_, err := store.AddCalendarEntry(ctx, in)
		require.NoError(t, err)
	}

	rr := httptest.NewRecorder()
	ac.ListCalendarEntries(rr, request(http.MethodGet, "/api/calendar?exercise=1&from=2024-03-01&to=2024-03-02", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[[]models.CalendarEntry](t, rr)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-03-01", entries[0].Date)

	_, cached := cache.Data["calendar_entries/1:2024-03-01:2024-03-02"]
	assert.True(t, cached)
}

func TestListCalendarEntries_InvalidExercise(t *testing.T) {
	ac, _, _ := newTestController(t)
	rr := httptest.NewRecorder()
	ac.ListCalendarEntries(rr, request(http.MethodGet, "/api/calendar?exercise=abc", ""))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWritesInvalidateOwnCollection(t *testing.T) {
	ac, _, cache := newTestController(t)

	rr := httptest.NewRecorder()
	ac.ListNotes(rr, request(http.MethodGet, "/api/notes", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
	rr = httptest.NewRecorder()
	ac.ListPeople(rr, request(http.MethodGet, "/api/people?exercise=2", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, cache.Data, 2)

	rr = httptest.NewRecorder()
	ac.AddNote(rr, request(http.MethodPost, "/api/notes", `{"exercise_id":1,"content":"new"}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, [][]string{{models.TableNotes}}, cache.Invalidations)
	assert.NotContains(t, cache.Data, "notes/*")
	assert.Contains(t, cache.Data, "people/2")

	rr = httptest.NewRecorder()
	ac.ListNotes(rr, request(http.MethodGet, "/api/notes", ""))
	notes := decode[[]models.Note](t, rr)
	assert.Len(t, notes, 1)
}

func TestWriteInvalidations(t *testing.T) {
	ac, store, cache := newTestController(t)
	ctx := context.Background()
	person, err := store.AddPerson(ctx, models.NewPerson{ExerciseID: 1, Name: "Ana"})
	require.NoError(t, err)
	entry, err := store.AddCalendarEntry(ctx, models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 1})
	require.NoError(t, err)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
		want    string
	}{
		{"mark", ac.MarkPractice, request(http.MethodPost, "/api/calendar/mark", `{"date":"2024-03-02","exercise_id":1}`), models.TableCalendarEntries},
		{"delete entry", ac.DeleteCalendarEntry, withID(request(http.MethodDelete, "/", ""), entry.ID), models.TableCalendarEntries},
		{"forgive", ac.UpdatePersonForgiveness, withID(request(http.MethodPatch, "/", `{"forgiven":true}`), person.ID), models.TablePeople},
		{"delete person", ac.DeletePerson, withID(request(http.MethodDelete, "/", ""), person.ID), models.TablePeople},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache.Invalidations = nil
			rr := httptest.NewRecorder()
			tt.handler(rr, tt.req)
			require.Less(t, rr.Code, 300, rr.Body.String())
			assert.Equal(t, [][]string{{tt.want}}, cache.Invalidations)
		})
	}
}

func TestFailedWriteKeepsCache(t *testing.T) {
	ac, _, cache := newTestController(t)
	cache.Data["notes/*"] = []byte("[]")

	rr := httptest.NewRecorder()
	ac.AddNote(rr, request(http.MethodPost, "/api/notes", `{"exercise_id":1,"content":"  "}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, cache.Invalidations)
	assert.Contains(t, cache.Data, "notes/*")
}

func TestServeFromCache(t *testing.T) {
	ac, _, cache := newTestController(t)
	cache.Data["people/3"] = []byte(`[{"id":99}]`)

	rr := httptest.NewRecorder()
	ac.ListPeople(rr, request(http.MethodGet, "/api/people?exercise=3", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `[{"id":99}]`, rr.Body.String())
}

func TestMarkPractice_CreatedThenExisting(t *testing.T) {
	ac, _, _ := newTestController(t)

	rr := httptest.NewRecorder()
	ac.MarkPractice(rr, request(http.MethodPost, "/api/calendar/mark", `{"date":"2024-03-01","exercise_id":3}`))
	assert.Equal(t, http.StatusCreated, rr.Code)
	first := decode[models.CalendarEntry](t, rr)
	require.NotNil(t, first.Note)
	assert.Equal(t, "Ejercicio 3 completado", *first.Note)

	rr = httptest.NewRecorder()
	ac.MarkPractice(rr, request(http.MethodPost, "/api/calendar/mark", `{"date":"2024-03-01","exercise_id":4}`))
	assert.Equal(t, http.StatusOK, rr.Code)
	second := decode[models.CalendarEntry](t, rr)
	assert.Equal(t, first.ID, second.ID)
}

func TestEntryForDate(t *testing.T) {
	ac, store, _ := newTestController(t)

	req := request(http.MethodGet, "/api/calendar/day/2024-03-01", "")
	req.SetPathValue("date", "2024-03-01")
	rr := httptest.NewRecorder()
	ac.EntryForDate(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, err := store.AddCalendarEntry(context.Background(), models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 1})
	require.NoError(t, err)

	rr = httptest.NewRecorder()
	ac.EntryForDate(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2024-03-01", decode[models.CalendarEntry](t, rr).Date)
}

func TestDeleteCalendarEntry(t *testing.T) {
	ac, store, _ := newTestController(t)
	entry, err := store.AddCalendarEntry(context.Background(), models.NewCalendarEntry{Date: "2024-03-01", ExerciseID: 1})
	require.NoError(t, err)

	req := request(http.MethodDelete, "/api/calendar/1", "")
	req.SetPathValue("id", "1")
	rr := httptest.NewRecorder()
	ac.DeleteCalendarEntry(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	entries, err := store.ListCalendarEntries(context.Background(), models.CalendarFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int64(1), entry.ID)
}

func TestDelete_InvalidID(t *testing.T) {
	ac, _, _ := newTestController(t)
	for _, id := range []string{"abc", "0", "-3"} {
		req := request(http.MethodDelete, "/api/notes/"+id, "")
		req.SetPathValue("id", id)
		rr := httptest.NewRecorder()
		ac.DeleteNote(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
	}
}

// --- people ---

func TestPeople_AddPatchDelete(t *testing.T) {
	ac, store, _ := newTestController(t)
	ctx := context.Background()

	rr := httptest.NewRecorder()
	ac.AddPerson(rr, request(http.MethodPost, "/api/people", `{"exercise_id":1,"name":"Ana","notes":"sister"}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	person := decode[models.Person](t, rr)
	assert.False(t, person.Forgiven)

	req := request(http.MethodPatch, "/api/people/1", `{"forgiven":true}`)
	req.SetPathValue("id", "1")
	rr = httptest.NewRecorder()
	ac.UpdatePersonForgiveness(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	people, err := store.ListPeople(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.True(t, people[0].Forgiven)

	req = request(http.MethodDelete, "/api/people/1", "")
	req.SetPathValue("id", "1")
	rr = httptest.NewRecorder()
	ac.DeletePerson(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	people, err = store.ListPeople(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestPeople_PatchRequiresForgiven(t *testing.T) {
	ac, _, _ := newTestController(t)
	req := request(http.MethodPatch, "/api/people/1", `{}`)
	req.SetPathValue("id", "1")
	rr := httptest.NewRecorder()
	ac.UpdatePersonForgiveness(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStoreErrorIsInternal(t *testing.T) {
	ac, store, _ := newTestController(t)
	require.NoError(t, store.Close())

	rr := httptest.NewRecorder()
	ac.ListPeople(rr, request(http.MethodGet, "/api/people", ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRequestBodyTooLarge(t *testing.T) {
	ac, _, _ := newTestController(t)
	body := `{"exercise_id":1,"content":"` + strings.Repeat("a", maxRequestBodySize) + `"}`

	rr := httptest.NewRecorder()
	ac.AddNote(rr, request(http.MethodPost, "/api/notes", body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"soulhealing/internal/models"
	"soulhealing/internal/providers"
	"soulhealing/internal/services"
	"strconv"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.PracticeServiceInterface
	cache   providers.ListCacheInterface
}

func NewApiController(logger providers.Logger, service services.PracticeServiceInterface, cache providers.ListCacheInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps validation errors to 400 and everything else to 500.
func (ac *ApiController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ac.logger.Errorf(providers.TypeApp, "%s %s: %s", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// exerciseParam reads the optional ?exercise= query value.
func exerciseParam(w http.ResponseWriter, r *http.Request) (*int, bool) {
	raw := r.URL.Query().Get("exercise")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise")
		return nil, false
	}
	return &id, true
}

func exerciseKey(id *int) string {
	if id == nil {
		return "*"
	}
	return strconv.Itoa(*id)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, collection, query string, compute func(ctx context.Context) (any, error)) {
	cacheKey := ac.cache.Key(collection, query)
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute(r.Context())
	if err != nil {
		ac.fail(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// written drops the cached listings of a collection after a successful
// mutation.
func (ac *ApiController) written(collection string) {
	ac.cache.Invalidate(collection)
}

func (ac *ApiController) ListCalendarEntries(w http.ResponseWriter, r *http.Request) {
	exercise, ok := exerciseParam(w, r)
	if !ok {
		return
	}
	filter := models.CalendarFilter{
		ExerciseID: exercise,
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}
	query := fmt.Sprintf("%s:%s:%s", exerciseKey(exercise), filter.From, filter.To)
	ac.serveFromCacheOrCompute(w, r, models.TableCalendarEntries, query, func(ctx context.Context) (any, error) {
		return ac.service.ListCalendarEntries(ctx, filter)
	})
}

func (ac *ApiController) AddCalendarEntry(w http.ResponseWriter, r *http.Request) {
	var in models.NewCalendarEntry
	if !decodeBody(w, r, &in) {
		return
	}
	entry, err := ac.service.AddCalendarEntry(r.Context(), in)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TableCalendarEntries)
	writeJSON(w, http.StatusCreated, entry)
}

type markRequest struct {
	Date       string `json:"date"`
	ExerciseID int    `json:"exercise_id"`
}

func (ac *ApiController) MarkPractice(w http.ResponseWriter, r *http.Request) {
	var in markRequest
	if !decodeBody(w, r, &in) {
		return
	}
	entry, created, err := ac.service.MarkPractice(r.Context(), in.Date, in.ExerciseID)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, entry)
		return
	}
	ac.written(models.TableCalendarEntries)
	writeJSON(w, http.StatusCreated, entry)
}

func (ac *ApiController) EntryForDate(w http.ResponseWriter, r *http.Request) {
	entry, err := ac.service.EntryForDate(r.Context(), r.PathValue("date"))
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "no entry for date")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (ac *ApiController) DeleteCalendarEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ac.service.DeleteCalendarEntry(r.Context(), id); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TableCalendarEntries)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ListNotes(w http.ResponseWriter, r *http.Request) {
	exercise, ok := exerciseParam(w, r)
	if !ok {
		return
	}
	ac.serveFromCacheOrCompute(w, r, models.TableNotes, exerciseKey(exercise), func(ctx context.Context) (any, error) {
		return ac.service.ListNotes(ctx, models.Filter{ExerciseID: exercise})
	})
}

func (ac *ApiController) AddNote(w http.ResponseWriter, r *http.Request) {
	var in models.NewNote
	if !decodeBody(w, r, &in) {
		return
	}
	note, err := ac.service.AddNote(r.Context(), in)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TableNotes)
	writeJSON(w, http.StatusCreated, note)
}

func (ac *ApiController) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ac.service.DeleteNote(r.Context(), id); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TableNotes)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ListPeople(w http.ResponseWriter, r *http.Request) {
	exercise, ok := exerciseParam(w, r)
	if !ok {
		return
	}
	ac.serveFromCacheOrCompute(w, r, models.TablePeople, exerciseKey(exercise), func(ctx context.Context) (any, error) {
		return ac.service.ListPeople(ctx, models.Filter{ExerciseID: exercise})
	})
}

func (ac *ApiController) AddPerson(w http.ResponseWriter, r *http.Request) {
	var in models.NewPerson
	if !decodeBody(w, r, &in) {
		return
	}
	person, err := ac.service.AddPerson(r.Context(), in)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TablePeople)
	writeJSON(w, http.StatusCreated, person)
}

type forgivenessRequest struct {
	Forgiven *bool `json:"forgiven"`
}

func (ac *ApiController) UpdatePersonForgiveness(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in forgivenessRequest
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Forgiven == nil {
		writeError(w, http.StatusBadRequest, "forgiven is required")
		return
	}
	if err := ac.service.SetForgiven(r.Context(), id, *in.Forgiven); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TablePeople)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ac.service.DeletePerson(r.Context(), id); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.written(models.TablePeople)
	w.WriteHeader(http.StatusNoContent)
}

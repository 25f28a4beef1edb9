package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tidecal/server/internal/api/middleware"
	"github.com/tidecal/server/internal/api/problem"
	"github.com/tidecal/server/internal/calendar"
	"github.com/tidecal/server/internal/domain/events"
	"github.com/tidecal/server/internal/domain/tags"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	EventDate   string   `json:"event_date"`
	EventTime   string   `json:"event_time"`
	Tags        []string `json:"tags"`
	Username    string   `json:"username"`
	CreatedAt   string   `json:"created_at"`
}

func toResponse(event *events.Event) eventResponse {
	tagList := event.Tags
	if tagList == nil {
		tagList = tags.Set{}
	}
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		EventDate:   event.Date.Format("2006-01-02"),
		EventTime:   event.Time,
		Tags:        tagList,
		Username:    event.Username,
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type eventListResponse struct {
	Items []eventResponse `json:"items"`
}

// List returns the requester's events, optionally restricted to a
// month via ?year= and ?month= query parameters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.Username(r.Context())

	var (
		list []events.Event
		err  error
	)
	if r.URL.Query().Has("year") || r.URL.Query().Has("month") {
		year, month, parseErr := yearMonth(r)
		if parseErr != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid month", parseErr, h.Env)
			return
		}
		list, err = h.Service.ListByMonth(r.Context(), owner, year, month)
	} else {
		list, err = h.Service.ListAll(r.Context(), owner)
	}
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Listing events failed", err, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(list))
	for i := range list {
		items = append(items, toResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, eventListResponse{Items: items})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), input, middleware.Username(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "Creating event failed")
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(event))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), id, middleware.Username(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "Fetching event failed")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(event))
}

type patchRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	EventDate   *string  `json:"event_date"`
	EventTime   *string  `json:"event_time"`
	Tags        []string `json:"tags"`
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	patch := events.Patch{
		Title:       req.Title,
		Description: req.Description,
		Time:        req.EventTime,
		Tags:        req.Tags,
	}
	if req.EventDate != nil {
		date, err := time.Parse("2006-01-02", *req.EventDate)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event date", err, h.Env)
			return
		}
		patch.Date = &date
	}

	event, err := h.Service.Update(r.Context(), id, patch, middleware.Username(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "Updating event failed")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id, middleware.Username(r.Context())); err != nil {
		h.writeError(w, r, err, "Deleting event failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type monthCell struct {
	Date    string          `json:"date"`
	Day     int             `json:"day"`
	InMonth bool            `json:"in_month"`
	Events  []eventResponse `json:"events"`
}

type monthResponse struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Cells []monthCell `json:"cells"`
}

// Month renders the six-week grid for a month with each event placed
// on its day. Days outside the month carry no events.
func (h *EventsHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid month", err, h.Env)
		return
	}

	owner := middleware.Username(r.Context())
	list, err := h.Service.ListByMonth(r.Context(), owner, year, month)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Listing events failed", err, h.Env)
		return
	}

	byID := make(map[int64]*events.Event, len(list))
	refs := make([]calendar.EventRef, 0, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
		refs = append(refs, calendar.EventRef{ID: list[i].ID, Date: list[i].Date, Time: list[i].Time})
	}
	buckets := calendar.BucketEvents(refs, year, month)

	cells := make([]monthCell, 0, calendar.GridCells)
	for _, cell := range calendar.MonthGrid(year, month) {
		entry := monthCell{
			Date:    cell.Date.Format("2006-01-02"),
			Day:     cell.Date.Day(),
			InMonth: cell.InMonth,
			Events:  []eventResponse{},
		}
		if cell.InMonth {
			for _, ref := range buckets[cell.Date.Day()] {
				entry.Events = append(entry.Events, toResponse(byID[ref.ID]))
			}
		}
		cells = append(cells, entry)
	}

	writeJSON(w, http.StatusOK, monthResponse{Year: year, Month: int(month), Cells: cells})
}

func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event id", err, h.Env)
		return 0, false
	}
	return id, true
}

func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error, title string) {
	var eventsErr events.ValidationError
	var tagsErr tags.ValidationError
	switch {
	case errors.As(err, &eventsErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.Env,
			problem.WithErrors(map[string]any{eventsErr.Field: eventsErr.Message}))
	case errors.As(err, &tagsErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.Env,
			problem.WithErrors(map[string]any{tagsErr.Field: tagsErr.Message}))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Not the event owner", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, title, err, h.Env)
	}
}

// yearMonth reads ?year= and ?month=, defaulting to the current UTC
// month when both are absent.
func yearMonth(r *http.Request) (int, time.Month, error) {
	query := r.URL.Query()
	if !query.Has("year") && !query.Has("month") {
		now := time.Now().UTC()
		return now.Year(), now.Month(), nil
	}

	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		return 0, 0, errors.New("year must be an integer")
	}
	monthNum, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		return 0, 0, errors.New("month must be an integer")
	}
	if monthNum < 1 || monthNum > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	return year, time.Month(monthNum), nil
}

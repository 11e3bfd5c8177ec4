package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"habitTrackerAPI/internal/types/habit"
	"habitTrackerAPI/middleware"
	"habitTrackerAPI/services"
)

const (
	msgFetchFailed  = "Failed to fetch data. Please check your connection."
	msgCreateFailed = "Error creating habit"
	msgUpdateFailed = "Error updating habit"
)

type HabitHandler struct {
	habitService *services.HabitService
}

func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

func (h *HabitHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	resp, err := h.habitService.GetToday(ctx, userID, r.URL.Query().Get("date"))
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	habits, err := h.habitService.ListHabits(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.habitService.CreateHabit(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err, msgCreateFailed)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.ToggleCompletionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.habitService.ToggleCompletion(ctx, userID, mux.Vars(r)["id"], req.Date, req.Completed)

	action := "unmark"
	if req.Completed {
		action = "mark"
	}
	middleware.RecordToggle(action, err)

	if err != nil {
		respondWithServiceError(w, err, msgUpdateFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HabitHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'months' must be a number")
			return
		}
		months = n
	}

	stats, err := h.habitService.GetStats(ctx, userID, months)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *HabitHandler) GetHabitCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	year, month, ok := yearMonth(w, r, time.Now().In(h.habitService.Location()))
	if !ok {
		return
	}

	m, err := h.habitService.GetHabitCalendar(ctx, userID, mux.Vars(r)["id"], year, month)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

// yearMonth reads ?year=&month=, defaulting each to now's. It writes the 400
// itself and returns false on malformed input.
func yearMonth(w http.ResponseWriter, r *http.Request, now time.Time) (int, time.Month, bool) {
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'year' must be a number")
			return 0, 0, false
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'month' must be a number")
			return 0, 0, false
		}
		month = time.Month(m)
	}

	return year, month, true
}

// GET /api/v1/user/stats
func (h *HabitHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.habitService.GetUserStats(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, st)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"habitTrackerAPI/internal/types/journal"
	"habitTrackerAPI/middleware"
	"habitTrackerAPI/services"
)

const msgSaveJournalFailed = "Error saving journal"

type JournalHandler struct {
	journalService *services.JournalService
}

func NewJournalHandler(journalService *services.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

func (h *JournalHandler) ListJournals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	journals, err := h.journalService.ListJournals(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, journals)
}

func (h *JournalHandler) GetJournalCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	year, month, ok := yearMonth(w, r, time.Now().In(h.journalService.Location()))
	if !ok {
		return
	}

	m, err := h.journalService.GetJournalCalendar(ctx, userID, year, month, r.URL.Query().Get("selected"))
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

func (h *JournalHandler) GetJournal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entry, err := h.journalService.GetJournal(ctx, userID, mux.Vars(r)["date"])
	if err != nil {
		respondWithServiceError(w, err, msgFetchFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) SaveJournal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req journal.SaveEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.SaveJournal(ctx, userID, mux.Vars(r)["date"], req.Content)
	if err != nil {
		respondWithServiceError(w, err, msgSaveJournalFailed)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

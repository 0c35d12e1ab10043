package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/liguebillard/federation-admin/repositories"
	"github.com/liguebillard/federation-admin/services"
)

const maxUploadBytes = 10 << 20 // 10MB

type TournamentHandler struct {
	importService  services.ImportService
	rankingService services.RankingService
	tournamentRepo repositories.TournamentRepository
}

func NewTournamentHandler(
	importService services.ImportService,
	rankingService services.RankingService,
	tournamentRepo repositories.TournamentRepository,
) *TournamentHandler {
	return &TournamentHandler{
		importService:  importService,
		rankingService: rankingService,
		tournamentRepo: tournamentRepo,
	}
}

// ValidateUpload handles POST /tournaments/validate: the read-only
// reconciliation pass that surfaces unknown players before any write.
func (h *TournamentHandler) ValidateUpload(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedFile(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.importService.ValidateUpload(r.Context(), data)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}

// CreatePlayers handles POST /tournaments/create-players, the second phase
// of the confirm-before-create workflow.
func (h *TournamentHandler) CreatePlayers(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Players []services.CreatePlayerInput `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Players) == 0 {
		badRequestResponse(w, r, errors.New("players list must not be empty"))
		return
	}

	created, err := h.importService.CreatePlayers(r.Context(), input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"created": created}, nil)
}

// CheckExists handles GET /tournaments/check-exists for the overwrite
// confirmation dialog.
func (h *TournamentHandler) CheckExists(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt(r, "categoryId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournamentNumber, err := queryInt(r, "tournamentNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	season := r.URL.Query().Get("season")
	if season == "" {
		badRequestResponse(w, r, errors.New("season query parameter is required"))
		return
	}

	check, err := h.importService.CheckExists(r.Context(), categoryID, tournamentNumber, season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check, nil)
}

// Import handles POST /tournaments/import: multipart CSV plus form fields.
func (h *TournamentHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := readUploadedFile(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	categoryID, err := formInt(r, "categoryId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournamentNumber, err := formInt(r, "tournamentNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	season := r.FormValue("season")
	if season == "" {
		badRequestResponse(w, r, errors.New("season form field is required"))
		return
	}
	tournamentDate, err := time.Parse("2006-01-02", r.FormValue("tournamentDate"))
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid tournamentDate: %w", err))
		return
	}
	var location *string
	if loc := r.FormValue("location"); loc != "" {
		location = &loc
	}

	summary, err := h.importService.Import(r.Context(), services.ImportInput{
		CategoryID:       categoryID,
		TournamentNumber: tournamentNumber,
		Season:           season,
		TournamentDate:   tournamentDate,
		Location:         location,
	}, data)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

// Delete handles DELETE /tournaments/{id}.
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid tournament id"))
		return
	}
	if err := h.importService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"deleted": id}, nil)
}

// List handles GET /tournaments with optional categoryId/season filters.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid categoryId"))
			return
		}
		filter.CategoryID = &categoryID
	}
	if season := r.URL.Query().Get("season"); season != "" {
		filter.Season = &season
	}

	tournaments, err := h.tournamentRepo.List(r.Context(), filter)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

// Recalculate handles POST /tournaments/recalculate-rankings.
func (h *TournamentHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CategoryID int    `json:"categoryId"`
		Season     string `json:"season"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rankingService.Recalculate(r.Context(), input.CategoryID, input.Season); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"recalculated": true}, nil)
}

// RecalculateAll handles POST /tournaments/recalculate-all-rankings.
func (h *TournamentHandler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rankingService.RecalculateAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

func readUploadedFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file upload is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}

func formInt(r *http.Request, name string) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, fmt.Errorf("%s form field is required", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/liguebillard/federation-admin/services"
)

type RankingHandler struct {
	rankingService services.RankingService
	exportService  services.ExportService
}

func NewRankingHandler(rankingService services.RankingService, exportService services.ExportService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, exportService: exportService}
}

// List handles GET /rankings?categoryId=&season=.
func (h *RankingHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt(r, "categoryId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	season := r.URL.Query().Get("season")
	if season == "" {
		badRequestResponse(w, r, errors.New("season query parameter is required"))
		return
	}

	rankings, err := h.rankingService.ListRankings(r.Context(), categoryID, season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil)
}

// Export handles GET /rankings/export, streaming a styled xlsx workbook.
func (h *RankingHandler) Export(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryInt(r, "categoryId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	season := r.URL.Query().Get("season")
	if season == "" {
		badRequestResponse(w, r, errors.New("season query parameter is required"))
		return
	}

	buf, filename, err := h.exportService.RankingsWorkbook(r.Context(), categoryID, season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := buf.WriteTo(w); err != nil {
		// Headers are already out; nothing left to do but log.
		slog.Error("failed to stream workbook", slog.Any("error", err))
	}
}

package handlers

import (
	"net/http"

	"github.com/liguebillard/federation-admin/services"
)

type CampaignHandler struct {
	campaignService services.CampaignService
}

func NewCampaignHandler(campaignService services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// SendConvocations handles POST /campaigns/convocations.
func (h *CampaignHandler) SendConvocations(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID int `json:"tournamentId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	summary, err := h.campaignService.SendConvocations(r.Context(), input.TournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

// SendResults handles POST /campaigns/results.
func (h *CampaignHandler) SendResults(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID int `json:"tournamentId"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	summary, err := h.campaignService.SendResults(r.Context(), input.TournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

// SendRelanceFinale handles POST /campaigns/relance-finale.
func (h *CampaignHandler) SendRelanceFinale(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CategoryID int    `json:"categoryId"`
		Season     string `json:"season"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	summary, err := h.campaignService.SendRelanceFinale(r.Context(), input.CategoryID, input.Season)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

// SendInvitations handles POST /campaigns/invitations.
func (h *CampaignHandler) SendInvitations(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Subject    string   `json:"subject"`
		Body       string   `json:"body"`
		Recipients []string `json:"recipients"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	summary, err := h.campaignService.SendInvitations(r.Context(), input.Subject, input.Body, input.Recipients)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary, nil)
}

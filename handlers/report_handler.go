package handlers

import (
	"net/http"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) File(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	var input services.FileReportInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reportService.File(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"report": report}, nil)
}

func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "reportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	report, err := h.reportService.GetByID(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil)
}

func (h *ReportHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	var kind *models.ReportKind
	if k := r.URL.Query().Get("kind"); k != "" {
		rk := models.ReportKind(k)
		kind = &rk
	}
	reports, err := h.reportService.ListOpen(r.Context(), actor, kind)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"reports": reports}, nil)
}

func (h *ReportHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "reportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.reportService.Close(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "closed"}, nil)
}

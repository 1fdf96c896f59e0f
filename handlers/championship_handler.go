package handlers

import (
	"net/http"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/services"
)

type ChampionshipHandler struct {
	championshipService services.ChampionshipService
	progressionService  services.ProgressionService
}

func NewChampionshipHandler(
	championshipService services.ChampionshipService,
	progressionService services.ProgressionService,
) *ChampionshipHandler {
	return &ChampionshipHandler{
		championshipService: championshipService,
		progressionService:  progressionService,
	}
}

// Create godoc
// @Summary Create a draft championship
// @Tags championships
// @Accept json
// @Produce json
// @Param input body services.CreateChampionshipInput true "Championship configuration"
// @Success 201 {object} models.Championship
// @Router /championships [post]
func (h *ChampionshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	var input services.CreateChampionshipInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"championship": championship}, nil)
}

func (h *ChampionshipHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *models.ChampionshipStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.ChampionshipStatus(s)
		status = &st
	}
	list, err := h.championshipService.List(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"championships": list}, nil)
}

func (h *ChampionshipHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	championship, err := h.championshipService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil)
}

// Enroll registers the authenticated player (or an admin-submitted pair) as
// an entry.
func (h *ChampionshipHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		PlayerIDs []int `json:"player_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.PlayerIDs) == 0 {
		input.PlayerIDs = []int{actor.PlayerID}
	}

	entry, err := h.championshipService.Enroll(r.Context(), id, actor, input.PlayerIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"entry": entry}, nil)
}

func (h *ChampionshipHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.championshipService.Withdraw(r.Context(), id, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "withdrawn"}, nil)
}

// Advance moves the championship one progression step forward. The force
// query parameter closes a stage with unplayed matches.
func (h *ChampionshipHandler) Advance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force := r.URL.Query().Get("force") == "true"

	result, err := h.progressionService.AdvanceStage(r.Context(), id, actor, force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}

func (h *ChampionshipHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stages, err := h.championshipService.ListStages(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil)
}

func (h *ChampionshipHandler) ListStageMatches(w http.ResponseWriter, r *http.Request) {
	stageID, err := idParam(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.championshipService.ListStageMatches(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
}

func (h *ChampionshipHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	stageID, err := idParam(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standings, err := h.championshipService.GetStandings(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
}

// UploadLogo stores a new championship logo from a multipart form.
func (h *ChampionshipHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	championship, err := h.championshipService.UploadLogo(r.Context(), id, actor, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/services"
)

var errInvalidPosition = errors.New("position query parameter must be a positive integer")

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	var category models.Category
	if err := readJSON(w, r, &category); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.categoryService.Create(r.Context(), actor, &category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"category": created}, nil)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var category models.Category
	if err := readJSON(w, r, &category); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	category.ID = id

	updated, err := h.categoryService.Update(r.Context(), actor, &category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"category": updated}, nil)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "invalid token")
		return
	}
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.categoryService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil)
}

func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil)
}

// Resolve answers which category a ranking position falls into.
func (h *CategoryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil || position < 1 {
		badRequestResponse(w, r, errInvalidPosition)
		return
	}
	category, err := h.categoryService.Resolve(r.Context(), position)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil)
}

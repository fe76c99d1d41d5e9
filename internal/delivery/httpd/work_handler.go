package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	work, err := h.catalogService.CreateWorkItem(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, work)
}

func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	workID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Work ID is required")
		return
	}

	var req models.CreateWorkItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.catalogService.UpdateWorkItem(r.Context(), workID, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Work item updated successfully",
	})
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	catalog, err := h.catalogService.GetCatalog(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, catalog)
}

func (h *Handler) LookupLegacyWork(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	if alias == "" {
		writeError(w, http.StatusBadRequest, "Legacy alias is required")
		return
	}

	work, err := h.catalogService.LookupWorkByLegacyID(r.Context(), alias)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, work)
}

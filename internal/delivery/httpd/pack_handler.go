package httpd

import (
	"net/http"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

func (h *Handler) CreatePack(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.PackID = 0

	response, err := h.catalogService.CreateOrUpdatePack(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) UpdatePack(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	var req models.CreatePackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	req.PackID = packID

	response, err := h.catalogService.CreateOrUpdatePack(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) GetAllPacks(w http.ResponseWriter, r *http.Request) {
	page := getIntQueryParam(r, "page", 1)
	limit := getIntQueryParam(r, "limit", 20)

	packs, err := h.catalogService.GetPacks(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, packs)
}

func (h *Handler) GetPackWorks(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	works, err := h.catalogService.ExpandPack(r.Context(), packID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, works)
}

func (h *Handler) DeletePack(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	if err := h.catalogService.DeletePack(r.Context(), packID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Pack deleted successfully",
	})
}

func (h *Handler) RestorePack(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	if err := h.catalogService.RestorePack(r.Context(), packID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Pack restored successfully",
	})
}

func (h *Handler) MarkPackDone(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	var req models.DonePackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.progressService.MarkPackDone(r.Context(), req.Username, packID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Pack marked done",
	})
}

func (h *Handler) RestoreDonePack(w http.ResponseWriter, r *http.Request) {
	packID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Pack ID is required")
		return
	}

	var req models.DonePackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.progressService.RestoreDonePack(r.Context(), req.Username, packID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Pack done marker removed",
	})
}

package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	var req models.MarkCompleteRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.progressService.MarkComplete(r.Context(), &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Work marked complete",
	})
}

func (h *Handler) FineTune(w http.ResponseWriter, r *http.Request) {
	var req models.FineTuneRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.progressService.FineTune(r.Context(), &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Row updated",
	})
}

func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req models.RecordViewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.progressService.RecordView(r.Context(), &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "View recorded",
	})
}

func (h *Handler) GetStudentWorkRows(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	workID, ok := getIntURLParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Work ID is required")
		return
	}

	rows, err := h.progressService.GetWorkRows(r.Context(), username, workID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"rows": rows,
	})
}

func (h *Handler) StartNext(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	var req models.StartNextRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	promoted, err := h.progressService.StartNext(r.Context(), username, req.BatchSize)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"promoted": promoted,
	})
}

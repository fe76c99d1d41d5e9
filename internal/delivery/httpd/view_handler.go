package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RubachokBoss/mx-portal/internal/service"
)

func (h *Handler) GetStudentQueue(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}

	queueSort := service.SortByDesc
	if r.URL.Query().Get("sort") == "id" {
		queueSort = service.SortByID
	}

	views, err := h.viewService.StudentQueue(r.Context(), username, queueSort)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"packs": views,
	})
}

package httpd

import (
	"net/http"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

// Assign materializes a pack onto one or more students' queues. Without
// force the response may be a conflict report instead of writes; the caller
// repeats with force=true to confirm.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	results, err := h.assignmentService.AssignMany(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"results": results,
	})
}

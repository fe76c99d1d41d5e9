package httpd

import (
	"net"
	"net/http"

	"github.com/RubachokBoss/mx-portal/internal/models"
)

func (h *Handler) SendContactMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sourceIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		sourceIP = r.RemoteAddr
	}

	if err := h.contactService.SendContactMessage(r.Context(), sourceIP, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Message sent",
	})
}

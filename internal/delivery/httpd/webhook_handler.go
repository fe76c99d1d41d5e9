package httpd

import (
	"net/http"
)

// MailWebhook принимает входящие письма от почтового провайдера.
// Всегда отвечает 200, иначе провайдер будет повторять доставку.
func (h *Handler) MailWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to parse webhook form")
			writeSuccess(w, map[string]interface{}{"accepted": false})
			return
		}
	}

	sender := r.FormValue("sender")
	subject := r.FormValue("subject")
	bodyHTML := r.FormValue("body-html")
	bodyPlain := r.FormValue("body-plain")

	result := h.ingestService.ProcessNotification(r.Context(), sender, subject, bodyHTML, bodyPlain)

	writeSuccess(w, map[string]interface{}{
		"accepted": true,
		"result":   result,
	})
}

func (h *Handler) GetLastNotification(w http.ResponseWriter, r *http.Request) {
	notification, err := h.ingestService.GetLastNotification(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if notification == nil {
		writeError(w, http.StatusNotFound, "No notifications received yet")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"notification": notification,
	})
}

// GetLastNotificationBody streams the archived mail verbatim.
func (h *Handler) GetLastNotificationBody(w http.ResponseWriter, r *http.Request) {
	payload, err := h.ingestService.GetLastNotificationBody(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "message/rfc822")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

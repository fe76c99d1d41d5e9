package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/mx-portal/internal/service"
)

type Handler struct {
	catalogService    service.CatalogService
	assignmentService service.AssignmentService
	progressService   service.ProgressService
	ingestService     service.IngestService
	viewService       service.ViewService
	contactService    service.ContactService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewHandler(
	catalogService service.CatalogService,
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
	ingestService service.IngestService,
	viewService service.ViewService,
	contactService service.ContactService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		catalogService:    catalogService,
		assignmentService: assignmentService,
		progressService:   progressService,
		ingestService:     ingestService,
		viewService:       viewService,
		contactService:    contactService,
		validate:          validator.New(),
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	// Почтовый вебхук живёт вне /api: его зовёт релей, не админка.
	router.Post("/webhook/mail", h.MailWebhook)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/works", func(r chi.Router) {
			r.Post("/", h.CreateWorkItem)
			r.Get("/", h.GetCatalog)
			r.Put("/{id}", h.UpdateWorkItem)
			r.Get("/legacy/{alias}", h.LookupLegacyWork)
		})

		api.Route("/packs", func(r chi.Router) {
			r.Post("/", h.CreatePack)
			r.Get("/", h.GetAllPacks)
			r.Put("/{id}", h.UpdatePack)
			r.Delete("/{id}", h.DeletePack)
			r.Post("/{id}/restore", h.RestorePack)
			r.Get("/{id}/works", h.GetPackWorks)
			r.Post("/{id}/done", h.MarkPackDone)
			r.Delete("/{id}/done", h.RestoreDonePack)
		})

		api.Post("/assignments", h.Assign)

		api.Route("/students/{username}", func(r chi.Router) {
			r.Get("/queue", h.GetStudentQueue)
			r.Get("/works/{id}", h.GetStudentWorkRows)
			r.Post("/start", h.StartNext)
		})

		api.Route("/progress", func(r chi.Router) {
			r.Post("/complete", h.MarkComplete)
			r.Post("/finetune", h.FineTune)
			r.Post("/view", h.RecordView)
		})

		api.Get("/notifications/last", h.GetLastNotification)
		api.Get("/notifications/last/body", h.GetLastNotificationBody)

		api.Post("/contact", h.SendContactMessage)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "portal-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeAndValidate reads the JSON body into dst and runs the validate tags.
// A false return means the response is already written.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

// handleServiceError maps service sentinels and validation errors to HTTP
// status codes; anything unrecognized is a 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrPackNotFound),
		errors.Is(err, service.ErrWorkNotFound),
		errors.Is(err, service.ErrRowNotFound),
		errors.Is(err, service.ErrDoneMarkMissing),
		errors.Is(err, service.ErrNoArchivedBody):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyPack),
		errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrSMSDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntURLParam(r *http.Request, key string) (int, bool) {
	value := chi.URLParam(r, key)
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < 1 {
		return 0, false
	}
	return intValue, true
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

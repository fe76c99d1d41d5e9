package httpd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/mx-portal/internal/models"
	"github.com/RubachokBoss/mx-portal/internal/service"
	"github.com/RubachokBoss/mx-portal/internal/service/mailparse"
)

type stubIngestService struct {
	calls []string
	last  *models.InboundNotification
	body  []byte
}

func (s *stubIngestService) ProcessNotification(_ context.Context, sender, subject, bodyHTML, bodyPlain string) models.ParsedResult {
	s.calls = append(s.calls, subject)
	body := bodyHTML
	if body == "" {
		body = bodyPlain
	}
	return mailparse.Parse(subject, body)
}

func (s *stubIngestService) GetLastNotification(_ context.Context) (*models.InboundNotification, error) {
	return s.last, nil
}

func (s *stubIngestService) GetLastNotificationBody(_ context.Context) ([]byte, error) {
	if s.body == nil {
		return nil, service.ErrNoArchivedBody
	}
	return s.body, nil
}

type stubViewService struct {
	gotSort service.QueueSort
	views   []models.PackView
}

func (s *stubViewService) StudentQueue(_ context.Context, _ string, queueSort service.QueueSort) ([]models.PackView, error) {
	s.gotSort = queueSort
	return s.views, nil
}

func newTestRouter(ingest service.IngestService, view service.ViewService) chi.Router {
	handler := NewHandler(nil, nil, nil, ingest, view, nil, zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func postForm(router chi.Router, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMailWebhookAcceptsResult(t *testing.T) {
	ingest := &stubIngestService{}
	router := newTestRouter(ingest, nil)

	rec := postForm(router, "/webhook/mail", url.Values{
		"sender":     {"noreply@worksite.example"},
		"subject":    {`Result for "101" by "alice"`},
		"body-plain": {"Answered: 7/10\n"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ingest.calls, 1)
	assert.Contains(t, rec.Body.String(), `"7 out of 10"`)
}

func TestMailWebhookAlwaysAcks(t *testing.T) {
	ingest := &stubIngestService{}
	router := newTestRouter(ingest, nil)

	// Мусорная доставка тоже подтверждается, иначе провайдер зациклится.
	rec := postForm(router, "/webhook/mail", url.Values{
		"subject": {"mail delivery failed"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.InvalidResultID)

	req := httptest.NewRequest(http.MethodPost, "/webhook/mail", strings.NewReader("%%%not-a-form"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLastNotification(t *testing.T) {
	ingest := &stubIngestService{}
	router := newTestRouter(ingest, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/last", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ingest.last = &models.InboundNotification{ID: "abc", ParsedUser: "alice"}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/last", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)
}

func TestGetLastNotificationBody(t *testing.T) {
	ingest := &stubIngestService{}
	router := newTestRouter(ingest, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/last/body", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ingest.body = []byte("From: a@b\r\nSubject: s\r\n\r\nAnswered: 7/10\n")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/last/body", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "message/rfc822", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Answered: 7/10")
}

func TestGetStudentQueueSortParam(t *testing.T) {
	view := &stubViewService{}
	router := newTestRouter(nil, view)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/students/alice/queue", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SortByDesc, view.gotSort)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/students/alice/queue?sort=id", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.SortByID, view.gotSort)
}

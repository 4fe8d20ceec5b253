package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/invoicechat/models"
)

type fakeRAGService struct {
	askReq   models.AskRequest
	answer   string
	askErr   error
	ingested models.IngestDocumentRequest
	docs     []models.Document
	count    int
	countErr error
}

func (f *fakeRAGService) Ask(_ context.Context, req models.AskRequest) (*models.AskResponse, error) {
	f.askReq = req
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &models.AskResponse{Response: f.answer}, nil
}

func (f *fakeRAGService) IngestDocument(_ context.Context, req models.IngestDocumentRequest) (int, error) {
	f.ingested = req
	return 3, nil
}

func (f *fakeRAGService) ListDocuments(context.Context) (*models.ListDocumentsResponse, error) {
	return &models.ListDocumentsResponse{Count: len(f.docs), Documents: f.docs}, nil
}

func (f *fakeRAGService) CountChunks(context.Context) (int, error) {
	return f.count, f.countErr
}

func newTestRouter(t *testing.T, svc *fakeRAGService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := logtest.NewNullLogger()
	router, err := NewRouter(NewAskController(svc, logger), logger)
	require.NoError(t, err)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAsk_Success(t *testing.T) {
	svc := &fakeRAGService{answer: "The total is 1,180.00"}
	rr := do(newTestRouter(t, svc), http.MethodPost, "/ask", `{"question":"What is the total?"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"response":"The total is 1,180.00"}`, rr.Body.String())
	assert.Equal(t, "What is the total?", svc.askReq.Question)
	assert.Empty(t, svc.askReq.History)
}

func TestAsk_PassesHistory(t *testing.T) {
	svc := &fakeRAGService{answer: "18%"}
	body := `{"question":"and the tax rate?","history":[{"role":"user","content":"total?"},{"role":"assistant","content":"1,180.00"}]}`
	rr := do(newTestRouter(t, svc), http.MethodPost, "/ask", body)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.askReq.History, 2)
	assert.Equal(t, "assistant", svc.askReq.History[1].Role)
}

func TestAsk_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"question":`},
		{"empty question", `{"question":""}`},
		{"blank question", `{"question":"   "}`},
		{"missing question", `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeRAGService{}
			rr := do(newTestRouter(t, svc), http.MethodPost, "/ask", tc.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAsk_ServiceErrorIs500WithErrorBody(t *testing.T) {
	svc := &fakeRAGService{askErr: errors.New("gemini api call failed: quota exceeded")}
	rr := do(newTestRouter(t, svc), http.MethodPost, "/ask", `{"question":"total?"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"gemini api call failed: quota exceeded"}`, rr.Body.String())
}

func TestIngestAndListDocuments(t *testing.T) {
	svc := &fakeRAGService{docs: []models.Document{{ID: "1", Text: "Invoice Number: INV-1"}}}
	router := newTestRouter(t, svc)

	rr := do(router, http.MethodPost, "/api/v1/documents", `{"text":"Invoice Number: INV-1","source":"email"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "email", svc.ingested.Source)

	var ingest models.IngestDocumentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ingest))
	assert.Equal(t, 3, ingest.Chunks)

	rr = do(router, http.MethodPost, "/api/v1/documents", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodGet, "/api/v1/documents", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list models.ListDocumentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestHealth(t *testing.T) {
	rr := do(newTestRouter(t, &fakeRAGService{count: 12}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 12, health.Chunks)

	rr = do(newTestRouter(t, &fakeRAGService{countErr: errors.New("chroma down")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestIndexAndStaticAssets(t *testing.T) {
	router := newTestRouter(t, &fakeRAGService{})

	rr := do(router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	for _, id := range []string{`id="user-input"`, `id="send-button"`, `id="chat-output"`} {
		assert.Contains(t, rr.Body.String(), id)
	}

	rr = do(router, http.MethodGet, "/static/script.js", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fetch('/ask'")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/ask", bytes.NewReader(nil))
	rr := httptest.NewRecorder()
	newTestRouter(t, &fakeRAGService{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

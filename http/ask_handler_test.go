package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/providers"
)

func testRouter() http.Handler {
	r := chi.NewRouter()
	RegisterAsk(r, AskDeps{
		Engine: &engine.Engine{Providers: providers.NewRegistry(providers.Availability{}, nil)},
	})
	return r
}

func TestAskPost(t *testing.T) {
	body := `{"question": "Are there any red flags?", "propertyContext": {"address": "123 Main St", "city": "Austin", "state": "TX", "zip": "78704", "listPrice": 529000}}`
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp engine.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "red_flags", resp.Category)
	assert.Contains(t, resp.Answer, "No major red flags")
	assert.Equal(t, "medium", resp.Confidence)
	assert.NotEmpty(t, resp.RequestID)
}

func TestAskGetQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ask?question=What+are+current+mortgage+rates%3F&address=123+Main+St&city=Austin&state=TX&zip=78704", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp engine.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mortgage_rate", resp.Category)
	assert.Contains(t, resp.Answer, "30-year fixed")
}

func TestAskMissingQuestion(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question_required")
}

func TestAskInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

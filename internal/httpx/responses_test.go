package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"message": "Book deleted"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message": "Book deleted"}`, w.Body.String())
}

func TestJSONError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/books", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-9"))
	w := httptest.NewRecorder()

	JSONError(w, r, http.StatusMethodNotAllowed, "VALIDATION_ERROR", "Book data is missing or invalid",
		[]ErrorDetail{{Field: "title", Message: "title is required"}})

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Book data is missing or invalid",
			"details": [{"field": "title", "message": "title is required"}]
		},
		"request_id": "req-9"
	}`, w.Body.String())
}

func TestJSONError_OmitsEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, httptest.NewRequest(http.MethodGet, "/books/x", nil), http.StatusNotFound, "NOT_FOUND", "Book not found", nil)

	assert.JSONEq(t, `{"error": {"code": "NOT_FOUND", "message": "Book not found"}}`, w.Body.String())
}

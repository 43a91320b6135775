package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

var sampleBook = book.Book{
	ISBN:      "0123456789",
	AmazonURL: "http://amazon.com/book1",
	Author:    "That One Guy",
	Language:  "Esperanto",
	Pages:     1000,
	Publisher: "Random Peguin",
	Title:     "Saluton",
	Year:      2022,
}

func newTestRouter(t *testing.T, db Pinger) (http.Handler, *book.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zaptest.NewLogger(t)
	repo := book.NewMockRepository(ctrl)
	handler := book.NewHTTPHandler(book.NewService(repo), logger)

	cfg := config.Default().Server
	cfg.CORSOrigins = []string{"http://localhost:3000"}
	return NewRouter(ctx, cfg, logger, db, handler), repo
}

func serve(h http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestRouter_BookRoutes(t *testing.T) {
	router, repo := newTestRouter(t, fakePinger{})

	t.Run("list", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return([]book.Book{sampleBook}, nil)

		resp := serve(router, testutil.NewRequest(http.MethodGet, "/books", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, resp.Body["books"], 1)
	})

	t.Run("list with trailing slash", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return(nil, nil)

		resp := serve(router, testutil.NewRequest(http.MethodGet, "/books/", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"books": []}`, string(resp.Raw))
	})

	t.Run("get passes path isbn", func(t *testing.T) {
		repo.EXPECT().GetByISBN(gomock.Any(), "0123456789").Return(sampleBook, nil)

		resp := serve(router, testutil.NewRequest(http.MethodGet, "/books/0123456789", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		b, _ := resp.Body["book"].(map[string]any)
		assert.Equal(t, "Saluton", b["title"])
	})

	t.Run("create", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), sampleBook).Return(sampleBook, nil)

		resp := serve(router, testutil.NewRequest(http.MethodPost, "/books", sampleBook))
		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("create with missing fields", func(t *testing.T) {
		resp := serve(router, testutil.NewRequest(http.MethodPost, "/books", `{"isbn": "1357924680"}`))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())
		assert.NotEmpty(t, resp.Body["request_id"])
	})

	t.Run("update uses path isbn", func(t *testing.T) {
		replacement := sampleBook
		replacement.ISBN = "9999999999"
		want := sampleBook
		repo.EXPECT().Update(gomock.Any(), want).Return(want, nil)

		resp := serve(router, testutil.NewRequest(http.MethodPut, "/books/0123456789", replacement))
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("delete unknown", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), "0000000000").Return(book.ErrNotFound)

		resp := serve(router, testutil.NewRequest(http.MethodDelete, "/books/0000000000", nil))
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", resp.ErrorCode())
	})

	t.Run("unsupported method", func(t *testing.T) {
		resp := serve(router, testutil.NewRequest(http.MethodPatch, "/books/0123456789", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
		assert.Equal(t, "METHOD_NOT_ALLOWED", resp.ErrorCode())
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := serve(router, testutil.NewRequest(http.MethodGet, "/authors", nil))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestRouter_Middleware(t *testing.T) {
	router, repo := newTestRouter(t, fakePinger{})

	t.Run("request id echoed", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any()).Return(nil, nil)

		r := testutil.NewRequest(http.MethodGet, "/books", nil)
		r.Header.Set("X-Request-Id", "req-123")
		resp := serve(router, r)
		assert.Equal(t, "req-123", resp.Header.Get("X-Request-Id"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		r := testutil.NewRequest(http.MethodOptions, "/books", nil)
		r.Header.Set("Origin", "http://localhost:3000")
		resp := serve(router, r)
		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("oversized body", func(t *testing.T) {
		body := `{"title": "` + strings.Repeat("x", 2<<20) + `"}`
		resp := serve(router, testutil.NewRequest(http.MethodPost, "/books", body))
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	})
}

func TestRouter_RateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().List(gomock.Any()).Return(nil, nil).Times(2)

	logger := zaptest.NewLogger(t)
	cfg := config.Default().Server
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := NewRouter(ctx, cfg, logger, fakePinger{}, book.NewHTTPHandler(book.NewService(repo), logger))

	var codes []int
	for range 3 {
		codes = append(codes, serve(router, testutil.NewRequest(http.MethodGet, "/books", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health probes are outside the limiter.
	assert.Equal(t, http.StatusOK, serve(router, testutil.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestRouter_Probes(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router, _ := newTestRouter(t, fakePinger{})

		resp := serve(router, testutil.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ok", string(resp.Raw))

		resp = serve(router, testutil.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ready", string(resp.Raw))
	})

	t.Run("database down", func(t *testing.T) {
		router, _ := newTestRouter(t, fakePinger{err: errors.New("connection refused")})

		resp := serve(router, testutil.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, "NOT_READY", resp.ErrorCode())
	})
}

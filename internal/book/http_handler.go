package book

import (
	"errors"
	"net/http"

	"bookstore/internal/httpx"

	"go.uber.org/zap"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type listResponse struct {
	Books []Book `json:"books"`
}

type bookResponse struct {
	Book Book `json:"book"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponses maps service errors to HTTP responses. Anything not
// listed here is an internal error.
var errorResponses = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Book not found"},
	{ErrValidation, http.StatusMethodNotAllowed, "VALIDATION_ERROR", "Book data is missing or invalid"},
}

// List handles GET /books
// @Summary List books
// @Description Get every book in insertion order
// @Tags books
// @Produce json
// @Success 200 {object} listResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
}

// Get handles GET /books/{isbn}
// @Summary Get book by ISBN
// @Tags books
// @Produce json
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} bookResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{isbn} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("isbn"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: b})
}

// Create handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param book body Book true "Full book record"
// @Success 201 {object} bookResponse
// @Failure 405 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeCreateInput(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bookResponse{Book: b})
}

// Update handles PUT /books/{isbn}
// @Summary Replace a book
// @Description Replace every field except the ISBN, which is taken from the path
// @Tags books
// @Accept json
// @Produce json
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} bookResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 405 {object} httpx.ErrorResponse
// @Router /books/{isbn} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeUpdateInput(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("isbn"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: b})
}

// Delete handles DELETE /books/{isbn}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} messageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{isbn} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("isbn")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "Book deleted"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorResponses {
		if errors.Is(err, e.target) {
			httpx.JSONError(w, r, e.status, e.code, e.message, errorDetails(err))
			return
		}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		return
	}

	fields := []zap.Field{zap.Error(err), zap.String("method", r.Method), zap.String("path", r.URL.Path)}
	var be *BackendError
	if errors.As(err, &be) {
		fields = append(fields, zap.String("op", be.Op), zap.String("sqlstate", be.Code))
	}
	httpx.LoggerFrom(r.Context(), h.logger).Error("book request failed", fields...)
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

func errorDetails(err error) []httpx.ErrorDetail {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	details := make([]httpx.ErrorDetail, len(verr.Fields))
	for i, f := range verr.Fields {
		details[i] = httpx.ErrorDetail{Field: f.Field, Message: f.Message}
	}
	return details
}

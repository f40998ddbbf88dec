package handling

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"haya_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
)

func TestHandleErrorWritesStatusAndBody(t *testing.T) {
	logger := gecho.NewDefaultLogger()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", lib.NewValidationError("quantity must be at least 1"), http.StatusBadRequest},
		{"not found", lib.NewNotFoundError("product no longer exists", "abc Red/M"), http.StatusNotFound},
		{"insufficient stock", lib.NewInsufficientStockError("only 1 in stock, 3 requested", "abc Red/M"), http.StatusConflict},
		{"conflict", &lib.AppError{Code: lib.CodeConflict, Message: "order total changed"}, http.StatusConflict},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError},
		{"wrapped unknown", lib.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(tc.err, "test", logger, rec)

			assert.Equal(t, tc.wantStatus, rec.Code)
			// The response must actually reach the client, not just be built.
			assert.NotZero(t, rec.Body.Len())
		})
	}
}

func TestHandleErrorIncludesOffendingLine(t *testing.T) {
	logger := gecho.NewDefaultLogger()
	rec := httptest.NewRecorder()

	HandleError(lib.NewInsufficientStockError("only 1 in stock, 3 requested", "abc Red/M"), "test", logger, rec)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "abc Red/M")
	assert.Contains(t, rec.Body.String(), string(lib.CodeInsufficientStock))
}

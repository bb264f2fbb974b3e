package errorx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMessageClones(t *testing.T) {
	derived := ErrForbidden.WithMessage("Authentication required")

	assert.Equal(t, "Authentication required", derived.Message)
	assert.Equal(t, ErrForbidden.Code, derived.Code)
	assert.Equal(t, ErrForbidden.HTTPStatus, derived.HTTPStatus)

	// the template stays untouched
	assert.Equal(t, "Insufficient permissions", ErrForbidden.Message)
}

func TestWithDetailClones(t *testing.T) {
	derived := ErrValidation.WithDetail("password", []string{"too short"})

	assert.Equal(t, []string{"too short"}, derived.Details["password"])
	assert.Nil(t, ErrValidation.Details)

	// chaining derives again instead of mutating
	second := derived.WithDetail("email", "missing")
	assert.Len(t, second.Details, 2)
	assert.Len(t, derived.Details, 1)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "[INVALID_TOKEN] Invalid or malformed token", ErrInvalidToken.Error())
}

func TestStatusMapping(t *testing.T) {
	cases := map[*APIError]int{
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrTokenExpired:       http.StatusUnauthorized,
		ErrInvalidToken:       http.StatusUnauthorized,
		ErrUnauthorized:       http.StatusUnauthorized,
		ErrForbidden:          http.StatusForbidden,
		ErrTenantMismatch:     http.StatusForbidden,
		ErrDuplicateSlug:      http.StatusConflict,
		ErrDuplicateEmail:     http.StatusConflict,
		ErrNotFound:           http.StatusNotFound,
		ErrValidation:         http.StatusBadRequest,
		ErrRateLimited:        http.StatusTooManyRequests,
		ErrInternal:           http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.HTTPStatus, err.Code)
	}
}

func TestHandlerEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewErrorHandler(nil, nil)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		h.Handle(c, ErrDuplicateSlug)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "DUPLICATE_SLUG", body.Error.Code)
	assert.Equal(t, "Slug is already taken", body.Error.Message)
}

func TestHandlerMasksUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewErrorHandler(nil, nil)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		h.Handle(c, assert.AnError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	// the raw error text never reaches the client
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestHandlerIncludesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewErrorHandler(nil, nil)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		h.Handle(c, ErrValidation.WithDetail("password", []string{"must contain an uppercase letter"}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must contain an uppercase letter")
}

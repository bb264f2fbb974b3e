package errorx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/migestion/migestion/internal/common/cnst"
	"github.com/migestion/migestion/internal/i18n"
)

// ErrorHandler turns errors into the uniform wire envelope
// {"success": false, "error": {"code", "message"}} and logs them with
// request context. Internal details never reach the client.
type ErrorHandler struct {
	logger     *zap.Logger
	translator *i18n.Translator
}

// NewErrorHandler creates a new error handler. translator may be nil.
func NewErrorHandler(logger *zap.Logger, translator *i18n.Translator) *ErrorHandler {
	return &ErrorHandler{
		logger:     logger,
		translator: translator,
	}
}

// Handle writes the error response and aborts the request.
func (h *ErrorHandler) Handle(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := h.toAPIError(err)
	h.log(c, apiErr, err)

	lang := c.GetHeader(cnst.HeaderAcceptLanguage)
	body := gin.H{
		"code":    apiErr.Code,
		"message": h.localize(lang, apiErr),
	}
	if len(apiErr.Details) > 0 {
		body["details"] = apiErr.Details
	}

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"success": false,
		"error":   body,
	})
}

func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}

func (h *ErrorHandler) localize(lang string, apiErr *APIError) string {
	if h.translator == nil {
		return apiErr.Message
	}
	return h.translator.Translate(lang, apiErr.Code, apiErr.Message)
}

func (h *ErrorHandler) log(c *gin.Context, apiErr *APIError, original error) {
	if h.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("code", apiErr.Code),
		zap.Int("status", apiErr.HTTPStatus),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	}

	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		// keep the original error server-side only
		h.logger.Error("request failed", append(fields, zap.Error(original))...)
		return
	}
	h.logger.Warn("request rejected", fields...)
}

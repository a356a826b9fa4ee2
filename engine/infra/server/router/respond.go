package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

// RespondOK writes the standard success envelope.
func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

// RespondCreated writes the standard creation envelope.
func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"message": message, "data": data})
}

// RespondWithError writes the standardized error envelope and logs the
// underlying cause server-side.
func RespondWithError(c *gin.Context, statusCode int, reqErr *RequestError) {
	log := logger.FromContext(c.Request.Context())
	log.Error("request failed",
		"status", statusCode,
		"reason", reqErr.Reason,
		"route", c.FullPath(),
		"error", reqErr.Err,
	)
	c.AbortWithStatusJSON(statusCode, gin.H{"error": reqErr.GetErrorInfo()})
}

// RespondDomainError maps the typed error taxonomy onto HTTP statuses:
// validation 400 with the offending fields, catalog and registration
// failures 502, persistence failures 500. Anything untyped is internal.
func RespondDomainError(c *gin.Context, err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    ErrBadRequestCode,
			"message": "validation failed",
			"fields":  vErr.Fields,
		}})
		return
	}
	var cErr *core.CatalogError
	if errors.As(err, &cErr) {
		RespondWithError(c, http.StatusBadGateway,
			NewRequestError(http.StatusBadGateway, "catalog request failed", err))
		return
	}
	var rErr *core.RegistrationError
	if errors.As(err, &rErr) {
		RespondWithError(c, http.StatusBadGateway,
			NewRequestError(http.StatusBadGateway, "agent platform request failed", err))
		return
	}
	var pErr *core.PersistenceError
	if errors.As(err, &pErr) {
		RespondWithError(c, http.StatusInternalServerError,
			NewRequestError(http.StatusInternalServerError, "storage operation failed", err))
		return
	}
	RespondWithError(c, http.StatusInternalServerError,
		NewRequestError(http.StatusInternalServerError, "internal error", err))
}

// GetClientID returns the caller's client scope. The auth layer in
// front of this service populates the header.
func GetClientID(c *gin.Context) string {
	clientID := c.GetHeader("X-Client-ID")
	if clientID == "" {
		RespondWithError(c, http.StatusUnauthorized,
			NewRequestError(http.StatusUnauthorized, "missing client scope", nil))
	}
	return clientID
}

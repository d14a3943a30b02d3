package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/middleware"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	err  error
	code string
}

// First match wins; each sentinel names its wire code.
var errorMappings = []errorMapping{
	{domain.ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{domain.ErrMissingToken, "MISSING_TOKEN"},
	{domain.ErrInvalidOrExpiredToken, "INVALID_TOKEN"},
	{domain.ErrRevokedToken, "REVOKED_TOKEN"},
	{domain.ErrTokenNotFound, "TOKEN_NOT_FOUND"},
	{domain.ErrUserNotFound, "USER_NOT_FOUND"},
	{domain.ErrUnauthenticated, "UNAUTHORIZED"},

	{domain.ErrForbidden, "FORBIDDEN"},
	{domain.ErrUserSuspended, "USER_SUSPENDED"},

	{domain.ErrDuplicateEmail, "DUPLICATE_EMAIL"},
	{domain.ErrAttemptsExceeded, "ATTEMPTS_EXCEEDED"},
	{domain.ErrInvalidRole, "INVALID_ROLE"},
	{domain.ErrInvalidStatus, "INVALID_STATUS"},
	{domain.ErrValidation, "VALIDATION_ERROR"},
	{domain.ErrRequirementsNotMet, "REQUIREMENTS_NOT_MET"},

	{domain.ErrActivityNotFound, "ACTIVITY_NOT_FOUND"},
	{domain.ErrLevelNotFound, "LEVEL_NOT_FOUND"},
	{domain.ErrContentNotFound, "CONTENT_NOT_FOUND"},
	{domain.ErrSubmissionNotFound, "SUBMISSION_NOT_FOUND"},
	{domain.ErrProgressNotFound, "PROGRESS_NOT_FOUND"},
	{domain.ErrStudentNotFound, "STUDENT_NOT_FOUND"},
	{domain.ErrAccountNotFound, "ACCOUNT_NOT_FOUND"},

	{domain.ErrAttemptConflict, "ATTEMPT_CONFLICT"},
}

// statusFor classifies err into an HTTP status. Authentication and
// authorization failures are opaque so a client cannot tell which factor failed.
func statusFor(err error) (status int, opaque bool, ok bool) {
	switch {
	case domain.IsAuthenticationError(err):
		return http.StatusUnauthorized, true, true
	case domain.IsAuthorizationError(err):
		return http.StatusForbidden, true, true
	case domain.IsValidationError(err):
		return http.StatusBadRequest, false, true
	case domain.IsNotFoundError(err):
		return http.StatusNotFound, false, true
	case errors.Is(err, domain.ErrAttemptConflict):
		return http.StatusConflict, false, true
	}
	return 0, false, false
}

// RespondError translates err into the error envelope and aborts the request.
// Unknown errors are logged and answered with an opaque 500.
func RespondError(c *gin.Context, err error) {
	if status, opaque, ok := statusFor(err); ok {
		for _, m := range errorMappings {
			if !errors.Is(err, m.err) {
				continue
			}
			msg := err.Error()
			if opaque {
				msg = m.err.Error()
			}
			c.AbortWithStatusJSON(status, response.Error(m.code, msg))
			return
		}
	}

	logger.Get().ErrorContext(c.Request.Context(), "request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, response.InternalError("An unexpected error occurred"))
}

// NotFound answers requests matching no route
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, response.NotFound("route "+c.Request.Method+" "+c.Request.URL.Path+" not found"))
}

// respondBindError answers a request whose body or query failed validation
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest(err.Error()))
}

// pathID parses a positive int64 path parameter, answering 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest("invalid "+name))
		return 0, false
	}
	return id, true
}

// principal returns the caller identity set by the authentication gate.
// Routes reaching a handler are already guarded, so absence is a 401.
func principal(c *gin.Context) (*domain.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondError(c, domain.ErrUnauthenticated)
		return nil, false
	}
	return p, true
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

const codeServerError = "SERVER_ERROR"

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindInvalidState:
		return http.StatusBadRequest
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as the JSON error body. Unclassified errors are
// logged and reported with a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unexpected error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "an unexpected error occurred",
			Code:  codeServerError,
		})
		return
	}

	c.AbortWithStatusJSON(StatusFor(appErr.Kind), models.ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Kind),
		Details: appErr.Details,
	})
}

// fieldError is one failed binding rule
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// respondBindingError reports a request body that failed to decode or validate
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		}
		respondError(c, apperrors.Validation("invalid input").WithDetails(details))
		return
	}

	respondError(c, apperrors.Validation("invalid request body: %s", err.Error()))
}

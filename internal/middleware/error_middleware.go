package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
)

// HandleAPIError maps application errors onto HTTP responses. The entity tag
// and details carried by CustomError pass through so clients can tell which
// resource a generic class error refers to.
func HandleAPIError(c *gin.Context, err error) {
	var detail *dto.ErrorDetail
	var status int

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())
	case errors.Is(err, apperrors.ErrBusinessRule):
		status = http.StatusUnprocessableEntity
		detail = dto.NewErrorDetail(dto.ErrorCodeBusinessRule, err.Error())
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrInvalidCredentials), errors.Is(err, apperrors.ErrAccountDisabled):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())
	default:
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	if entity := apperrors.EntityOf(err); entity != "" {
		detail = detail.WithEntity(entity)
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Details != nil {
		detail = detail.WithDetails(ce.Details)
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

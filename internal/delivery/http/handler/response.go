package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/letsconnect/connect-backend/internal/delivery/http/middleware"
	"github.com/letsconnect/connect-backend/internal/domain"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

var badRequestErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidUserID,
	domain.ErrInvalidDirection,
	domain.ErrInvalidWallet,
	domain.ErrInvalidConnection,
	domain.ErrInvalidLocationShare,
	domain.ErrCannotSwipeSelf,
	domain.ErrCannotConnectSelf,
	domain.ErrSyntheticTarget,
}

var notFoundErrors = []error{
	domain.ErrProfileNotFound,
	domain.ErrSwipeNotFound,
	domain.ErrMatchNotFound,
	domain.ErrConnectionNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// errorStatus maps a use case error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWalletNotLinked):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are
// recorded on the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	resp := ErrorResponse{Error: err.Error()}
	switch status {
	case http.StatusInternalServerError:
		resp.Error = "internal server error"
	case http.StatusServiceUnavailable:
		resp.Error = "service temporarily unavailable"
		resp.Retryable = true
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: "invalid request body"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Details = append(resp.Details, fe.Field()+": "+fe.Tag())
		}
	} else {
		resp.Details = []string{err.Error()}
	}
	c.JSON(http.StatusBadRequest, resp)
}

func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

// pagination reads limit and offset query parameters. Invalid values fall
// back to zero and the use case applies its defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

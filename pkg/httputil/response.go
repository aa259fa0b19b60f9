package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/memory-api/pkg/errors"
	pkgvalidator "github.com/jwalitptl/memory-api/pkg/validator"
)

// Status tags of the response envelope
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Page is the paginated list payload
type Page struct {
	CurrentPage    int         `json:"currentPage"`
	TotalPages     int         `json:"totalPages"`
	TotalItemCount int         `json:"totalItemCount"`
	Data           interface{} `json:"data"`
}

// NewPage builds a Page from a total count
func NewPage(data interface{}, page, pageSize, total int) Page {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalItemCount: total,
		Data:           data,
	}
}

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, message string, data interface{}) {
	RespondWithStatus(c, http.StatusOK, message, data)
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, message string, data interface{}) {
	RespondWithStatus(c, http.StatusCreated, message, data)
}

func RespondWithStatus(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// BindError wraps a request binding failure. Validator errors pass through so
// RespondWithError can list the offending fields.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		return err
	}
	return errors.Validation("invalid request body", err)
}

// RespondWithError maps err onto the envelope. Uncategorized errors never leak their message.
func RespondWithError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Status:  StatusFail,
			Message: "invalid request",
			Data:    gin.H{"fields": pkgvalidator.Translate(verrs)},
		})
		return
	}

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	code := appErr.StatusCode()
	status := StatusFail
	if code >= http.StatusInternalServerError {
		status = StatusError
		log.Error().
			Err(err).
			Str("kind", appErr.Kind.String()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(code, Response{
		Status:  status,
		Message: appErr.Message,
	})
}

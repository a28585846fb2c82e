package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/logging"
)

const (
	CodeBadRequest     = "bad_request"
	CodeInvalidDriver  = "invalid_driver"
	CodeInvalidOptions = "invalid_options"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
)

// ErrorResponse is a dto for sending error response
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// StatusResponse is a dto for sending operation status
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func OKResponse() StatusResponse {
	return StatusResponse{Status: "ok"}
}

// abortWithError maps err onto an HTTP status and writes the JSON error body
func abortWithError(c *gin.Context, err error) {
	status, response := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.Errorf("[%s %s] %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, response)
}

func badRequest(c *gin.Context, msg string, err error) {
	response := ErrorResponse{Code: CodeBadRequest, Message: msg}
	if err != nil {
		response.Details = []string{err.Error()}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

func errorResponse(err error) (int, ErrorResponse) {
	response := ErrorResponse{Message: err.Error()}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			response.Details = append(response.Details, e.Error())
		}
	}

	switch {
	case errors.Is(err, errs.ErrInvalidDriver):
		response.Code = CodeInvalidDriver
		return http.StatusBadRequest, response
	case errors.Is(err, errs.ErrInvalidOptions):
		response.Code = CodeInvalidOptions
		if len(response.Details) > 0 {
			response.Message = errs.ErrInvalidOptions.Error()
		}
		return http.StatusBadRequest, response
	case errors.Is(err, errs.ErrNotFound):
		response.Code = CodeNotFound
		return http.StatusNotFound, response
	}

	response.Code = CodeInternal
	return http.StatusInternalServerError, response
}

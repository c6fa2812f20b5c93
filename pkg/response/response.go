// Package response defines the JSON envelope every API endpoint answers with.
package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var EmptyRequestBodyResponse = Response{
	StatusCode: http.StatusBadRequest,
	Error:      "Empty Request Body",
	Message:    "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	StatusCode: http.StatusBadRequest,
	Error:      "Bad Request",
	Message:    "The request body could not be parsed.",
}

var UnauthorizedResponse = Response{
	StatusCode: http.StatusUnauthorized,
	Error:      "Unauthorized",
	Message:    "A valid access token is required.",
}

var ForbiddenResponse = Response{
	StatusCode: http.StatusForbidden,
	Error:      "Forbidden",
	Message:    "You are not allowed to access this link.",
}

var ResourceNotFoundResponse = Response{
	StatusCode: http.StatusNotFound,
	Error:      "Resource Not Found",
	Message:    "The requested resource was not found.",
}

var LinkExpiredResponse = Response{
	StatusCode: http.StatusGone,
	Error:      "Link Expired",
	Message:    "The link has expired.",
}

var SlugExistsResponse = Response{
	StatusCode: http.StatusConflict,
	Error:      "Slug Exists",
	Message:    "The slug is already taken. Please choose another one.",
}

var ServerErrorResponse = Response{
	StatusCode: http.StatusInternalServerError,
	Error:      "Server Error",
	Message:    "An internal server error occurred. Please try again later.",
}

type Response struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message"`
	Details    []any  `json:"details,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// SuccessResponse builds a successful envelope. Only the first element of data is used.
func SuccessResponse(statusCode int, msg string, data ...any) Response {
	resp := Response{
		Success:    true,
		StatusCode: statusCode,
		Message:    msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issueForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url":
		return "Invalid url."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	case "slug":
		return "Only lowercase letters, digits and dashes are allowed."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	validationErrs := make([]validationError, 0, len(errs))
	for _, e := range errs {
		validationErrs = append(validationErrs, validationError{
			Field: e.Field(),
			Value: e.Value(),
			Issue: issueForTag(e),
		})
	}

	return validationErrs
}

func ValidationErrorResponse(err error) Response {
	resp := Response{
		StatusCode: http.StatusBadRequest,
		Error:      "Validation Error",
		Message:    "The request contains invalid fields.",
	}

	for _, e := range getValidationErrors(err) {
		resp.Details = append(resp.Details, e)
	}

	return resp
}

package server

import (
	"net/http"

	liberrors "github.com/pb33f/libopenapi-validator/errors"

	"github.com/apimock-project/apimock-go/internal/config"
	"github.com/apimock-project/apimock-go/pkg/logger"
)

// ValidationErrorResponse is the body answered when request validation fails
// with behaviour "fail".
type ValidationErrorResponse struct {
	Message string                   `json:"message"`
	Errors  []ValidationErrorDetails `json:"errors"`
}

// ValidationErrorDetails describes a single validation error
type ValidationErrorDetails struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
}

// validateRequest checks the request against the OpenAPI spec and reports
// whether processing should continue. Behaviour "fail" answers 400 with the
// validation errors, "log" records and continues, "ignore" skips validation.
func (s *Server) validateRequest(w http.ResponseWriter, r *http.Request) bool {
	if s.validator == nil {
		return true
	}

	behaviour := s.cfg.Validation.RequestBehaviour()
	logger.Debugf("validating request %s %s against OpenAPI spec (behaviour: %s)", r.Method, r.URL.Path, behaviour)

	valid, validationErrors := s.validator.ValidateHttpRequest(r)
	if valid {
		logger.Tracef("request %s %s is valid", r.Method, r.URL.Path)
		return true
	}

	if len(validationErrors) == 0 {
		logger.Warnf("request validation failed but no validation errors were returned")
		return true
	}

	for _, err := range validationErrors {
		logger.Warnf("request validation error - method:%s, path:%s: %s", r.Method, r.URL.Path, err.Message)
	}

	if behaviour != config.ValidationBehaviourFail {
		return true
	}

	s.writeJSON(w, r, http.StatusBadRequest, buildValidationErrorResponse(validationErrors))
	return false
}

func buildValidationErrorResponse(validationErrors []*liberrors.ValidationError) ValidationErrorResponse {
	details := make([]ValidationErrorDetails, 0, len(validationErrors))
	for _, err := range validationErrors {
		details = append(details, ValidationErrorDetails{
			Message:   err.Message,
			ErrorType: string(err.ValidationType),
		})
	}
	return ValidationErrorResponse{
		Message: "OpenAPI request validation failed",
		Errors:  details,
	}
}

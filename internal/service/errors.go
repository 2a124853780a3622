// Package service glues the mobility core, edge network, event log, and
// exposure bus together behind the operations the control-plane API
// exposes, translating domain errors into a uniform ServiceError.
package service

import "fmt"

// ServiceError is a uniform, REST-mappable error: Code selects the HTTP
// status (api.writeServiceError maps INVALID_ARGUMENT->400, NOT_FOUND->404,
// CONFLICT->409, anything else->500), Message is the human-readable detail.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidArgument(format string, args ...any) *ServiceError {
	return &ServiceError{Code: "INVALID_ARGUMENT", Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *ServiceError {
	return &ServiceError{Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

func internalError(format string, args ...any) *ServiceError {
	return &ServiceError{Code: "INTERNAL", Message: fmt.Sprintf(format, args...)}
}

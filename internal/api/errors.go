package api

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is the fatal pre-deployment error. It is returned when a
// release request fails the validation gate (duplicate names, missing or
// self dependencies, circular dependencies, bad parameters) and guarantees
// that no deployment side effects have occurred.
//
// The error message names every offender, not just the first one found, so
// a caller can fix the whole request in one round trip.
type ValidationError struct {
	// Issues holds every problem found, in discovery order
	Issues []ValidationIssue
}

// Error implements the error interface for ValidationError.
// All issue messages are joined so nothing is hidden behind "and 3 more".
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// NewValidationError creates a ValidationError from the given issues.
func NewValidationError(issues ...ValidationIssue) *ValidationError {
	return &ValidationError{Issues: issues}
}

// IsValidationError checks if an error is a ValidationError using error
// unwrapping, so wrapped errors are recognized too.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// DeploymentError represents the failure of a single service's deploy or
// rollback call. It is recoverable at the release level: the coordinator
// captures it into that service's ServiceResult and never returns it to
// the caller directly.
type DeploymentError struct {
	// Service is the name of the failing service
	Service string

	// Op is the operation that failed, "deploy" or "rollback"
	Op string

	// Err is the underlying cause
	Err error
}

// Error implements the error interface for DeploymentError.
func (e *DeploymentError) Error() string {
	return fmt.Sprintf("%s failed for service %s: %v", e.Op, e.Service, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// NewDeploymentError creates a DeploymentError for the given service and
// operation.
//
// Args:
//   - service: The name of the service whose call failed
//   - op: The failing operation, "deploy" or "rollback"
//   - err: The underlying cause
//
// Returns:
//   - *DeploymentError: A new DeploymentError instance
func NewDeploymentError(service, op string, err error) *DeploymentError {
	return &DeploymentError{Service: service, Op: op, Err: err}
}

// IsDeploymentError checks if an error is a DeploymentError using error
// unwrapping.
func IsDeploymentError(err error) bool {
	var d *DeploymentError
	return errors.As(err, &d)
}

// RegistryError represents a persistence failure in the release registry.
// Registry failures are surfaced to the caller as warnings but never
// overwrite or discard an already-computed deployment outcome.
type RegistryError struct {
	// Op is the registry operation that failed (e.g. "add", "update", "load")
	Op string

	// Err is the underlying cause
	Err error
}

// Error implements the error interface for RegistryError.
func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// NewRegistryError creates a RegistryError for the given operation.
func NewRegistryError(op string, err error) *RegistryError {
	return &RegistryError{Op: op, Err: err}
}

// IsRegistryError checks if an error is a RegistryError using error
// unwrapping.
func IsRegistryError(err error) bool {
	var r *RegistryError
	return errors.As(err, &r)
}

// NotFoundError represents a lookup miss with contextual information.
// This standardized error type provides consistent error handling for
// point lookups against the release registry.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "release")
	ResourceType string

	// ResourceName is the specific identifier that was not found
	ResourceName string

	// Message provides a custom error message if the default format is
	// insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
// Returns either the custom message if provided, or a formatted default
// message using the resource type and name.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
// This function provides a type-safe way to check for not found conditions
// in error handling code, supporting wrapped errors.
//
// Example:
//
//	record, err := reg.GetRelease(id)
//	if api.IsNotFound(err) {
//	    // Handle missing release
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource
// type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewNotFoundErrorWithMessage creates a new NotFoundError with a custom
// message, used when the default format doesn't provide enough context.
func NewNotFoundErrorWithMessage(resourceType, resourceName, message string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Message:      message,
	}
}

// Specific NotFoundError constructors.
var (
	// NewReleaseNotFoundError creates a release not found error.
	NewReleaseNotFoundError = func(id string) *NotFoundError {
		return NewNotFoundError("release", id)
	}
)

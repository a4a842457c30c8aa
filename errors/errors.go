package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERROR CODES
// =============================================================================

// Error code constants for structured errors.
const (
	CodeConfigError            = "CONFIG_ERROR"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeComponentNotFound      = "COMPONENT_NOT_FOUND"
	CodeComponentAlreadyExists = "COMPONENT_ALREADY_EXISTS"
	CodeCircularDependency     = "CIRCULAR_DEPENDENCY"
	CodeLifecycleError         = "LIFECYCLE_ERROR"
	CodeResolutionFailed       = "RESOLUTION_FAILED"
	CodeDiscoveryError         = "DISCOVERY_ERROR"
	CodeHealthCheckFailed      = "HEALTH_CHECK_FAILED"
)

// configurationCodes are raised for misuse of the engine contract and are
// always surfaced synchronously to the caller of the offending operation.
var configurationCodes = map[string]bool{
	CodeConfigError:            true,
	CodeValidationError:        true,
	CodeComponentNotFound:      true,
	CodeComponentAlreadyExists: true,
	CodeCircularDependency:     true,
}

// =============================================================================
// STRUCTURED ERROR
// =============================================================================

// Error represents a structured engine error with a code and context.
type Error struct {
	Code      string
	Message   string
	Cause     error
	Timestamp time.Time
	Context   map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for Error. Errors match when their codes match,
// allowing comparison against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithContext adds a context value to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// ErrConfigError creates a configuration error.
func ErrConfigError(message string, cause error) *Error {
	return newError(CodeConfigError, message, cause)
}

// ErrValidationError creates a validation error for a configuration field.
func ErrValidationError(field string, cause error) *Error {
	return newError(CodeValidationError, fmt.Sprintf("validation error for field '%s'", field), cause).
		WithContext("field", field)
}

// ErrComponentNotFound creates an error for an unregistered component name.
func ErrComponentNotFound(name string) *Error {
	return newError(CodeComponentNotFound, "component '"+name+"' not found", nil).
		WithContext("component", name)
}

// ErrDependencyNotFound creates an error for a declared dependency that has
// no matching registration.
func ErrDependencyNotFound(component, dependency string) *Error {
	return newError(CodeComponentNotFound,
		"component '"+component+"' depends on '"+dependency+"' which is not registered", nil).
		WithContext("component", component).
		WithContext("dependency", dependency)
}

// ErrComponentAlreadyExists creates an error for a duplicate registration.
func ErrComponentAlreadyExists(name string) *Error {
	return newError(CodeComponentAlreadyExists, "component '"+name+"' already registered", nil).
		WithContext("component", name)
}

// ErrManifestAlreadyExists creates an error for a duplicate manifest type.
func ErrManifestAlreadyExists(componentType string) *Error {
	return newError(CodeComponentAlreadyExists, "manifest for type '"+componentType+"' already registered", nil).
		WithContext("type", componentType)
}

// ErrCircularDependency creates an error naming the full cycle path.
func ErrCircularDependency(path []string) *Error {
	return newError(CodeCircularDependency, "circular dependency detected: "+strings.Join(path, " -> "), nil).
		WithContext("path", path)
}

// ErrEngineShutdown creates an error for an operation attempted against a
// shut-down engine.
func ErrEngineShutdown(operation string) *Error {
	return newError(CodeConfigError, "cannot "+operation+": engine is shut down", nil).
		WithContext("operation", operation)
}

// ErrLifecycleError creates an operational error for a lifecycle phase.
func ErrLifecycleError(phase string, cause error) *Error {
	return newError(CodeLifecycleError, "lifecycle error during "+phase, cause).
		WithContext("phase", phase)
}

// ErrResolutionFailed creates an operational error for a failed instantiation.
func ErrResolutionFailed(name string, cause error) *Error {
	return newError(CodeResolutionFailed, "failed to resolve component '"+name+"'", cause).
		WithContext("component", name)
}

// ErrDiscoveryError creates an operational error for a discovery failure.
func ErrDiscoveryError(path string, cause error) *Error {
	return newError(CodeDiscoveryError, "discovery failed for '"+path+"'", cause).
		WithContext("path", path)
}

// ErrHealthCheckFailed creates an error for a failing health check.
func ErrHealthCheckFailed(name string, cause error) *Error {
	return newError(CodeHealthCheckFailed, "health check '"+name+"' failed", cause).
		WithContext("check", name)
}

// =============================================================================
// SENTINELS (for use with errors.Is)
// =============================================================================

var (
	// ErrConfigErrorSentinel matches any configuration error.
	ErrConfigErrorSentinel = &Error{Code: CodeConfigError}

	// ErrValidationErrorSentinel matches any validation error.
	ErrValidationErrorSentinel = &Error{Code: CodeValidationError}

	// ErrComponentNotFoundSentinel matches any missing-component error.
	ErrComponentNotFoundSentinel = &Error{Code: CodeComponentNotFound}

	// ErrComponentAlreadyExistsSentinel matches any duplicate-registration error.
	ErrComponentAlreadyExistsSentinel = &Error{Code: CodeComponentAlreadyExists}

	// ErrCircularDependencySentinel matches any circular-dependency error.
	ErrCircularDependencySentinel = &Error{Code: CodeCircularDependency}

	// ErrLifecycleErrorSentinel matches any lifecycle error.
	ErrLifecycleErrorSentinel = &Error{Code: CodeLifecycleError}

	// ErrResolutionFailedSentinel matches any resolution failure.
	ErrResolutionFailedSentinel = &Error{Code: CodeResolutionFailed}

	// ErrDiscoveryErrorSentinel matches any discovery error.
	ErrDiscoveryErrorSentinel = &Error{Code: CodeDiscoveryError}
)

// =============================================================================
// HELPERS
// =============================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// IsComponentNotFound checks if the error is a missing-component error.
func IsComponentNotFound(err error) bool {
	return Is(err, ErrComponentNotFoundSentinel)
}

// IsComponentAlreadyExists checks if the error is a duplicate-registration error.
func IsComponentAlreadyExists(err error) bool {
	return Is(err, ErrComponentAlreadyExistsSentinel)
}

// IsCircularDependency checks if the error is a circular-dependency error.
func IsCircularDependency(err error) bool {
	return Is(err, ErrCircularDependencySentinel)
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	return Is(err, ErrValidationErrorSentinel)
}

// IsConfiguration reports whether err is a configuration error: a misuse of
// the engine contract rather than a runtime failure.
func IsConfiguration(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return configurationCodes[e.Code]
}

// IsOperational reports whether err is an operational error: a runtime
// failure of a component or of the engine itself.
func IsOperational(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code != "" && !configurationCodes[e.Code]
}

package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"cycle-dashboard/src/logger"

	"google.golang.org/grpc/codes"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct kinds so boundaries can map them with errors.As.
type InvalidRangeError struct{ DashboardError }
type UnsupportedModeError struct{ DashboardError }
type RenderUnavailableError struct{ DashboardError }
type ConfigurationError struct{ DashboardError }
type InvalidRequestError struct{ DashboardError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewInvalidRangeError(format string, args ...interface{}) error {
	return &InvalidRangeError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewUnsupportedModeError(cause error) error {
	return &UnsupportedModeError{DashboardError{Message: "unsupported mode", Cause: cause}}
}

func NewRenderUnavailableError(cause error) error {
	return &RenderUnavailableError{DashboardError{Message: "chart rendering unavailable", Cause: cause}}
}

func NewInvalidRequestError(format string, args ...interface{}) error {
	return &InvalidRequestError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------
// Boundary mapping
// -----------------------------------------------------------------------------

// HTTPStatus maps an error to the status code returned at the HTTP boundary.
func HTTPStatus(err error) int {
	var (
		rangeErr  *InvalidRangeError
		modeErr   *UnsupportedModeError
		reqErr    *InvalidRequestError
		renderErr *RenderUnavailableError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &modeErr), errors.As(err, &rangeErr), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &renderErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps an error to the status code returned by the gRPC service.
func GRPCCode(err error) codes.Code {
	var (
		rangeErr  *InvalidRangeError
		modeErr   *UnsupportedModeError
		reqErr    *InvalidRequestError
		renderErr *RenderUnavailableError
	)
	switch {
	case err == nil:
		return codes.OK
	case errors.As(err, &modeErr), errors.As(err, &rangeErr), errors.As(err, &reqErr):
		return codes.InvalidArgument
	case errors.As(err, &renderErr):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs boundary failures and keeps a running count for health
// reporting. There is no retry: every pipeline step is a local pure call.
type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log.Named("ErrorHandler"),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int64 {
	return e.errorCount.Load()
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// -----------------------------------------------------------------------------

// Handle logs err with its context. Client errors are logged at WARNING,
// everything else at ERROR and counted.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	if HTTPStatus(err) < http.StatusInternalServerError {
		e.Logger.Warning("Rejected request in %s: %v", context, err)
		return
	}
	e.errorCount.Add(1)
	e.Logger.Error("Error in %s: %v", context, err)
}

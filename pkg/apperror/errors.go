// Package apperror defines coded application errors shared by the matching
// service, its transports and its clients. Codes map onto gRPC and Connect
// status codes so callers can branch on them without string matching.
package apperror

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	// Caller errors
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeInvalidQuantity  ErrorCode = "INVALID_QUANTITY"
	CodeUnknownLocation  ErrorCode = "UNKNOWN_LOCATION"
	CodeUnknownBloodType ErrorCode = "UNKNOWN_BLOOD_TYPE"
	CodeNilInput         ErrorCode = "NIL_INPUT"

	// Graph configuration
	CodeInvalidGraph  ErrorCode = "INVALID_GRAPH"
	CodeDuplicateNode ErrorCode = "DUPLICATE_NODE"
	CodeDanglingEdge  ErrorCode = "DANGLING_EDGE"
	CodeSelfLoop      ErrorCode = "SELF_LOOP"
	CodeInvalidLength ErrorCode = "INVALID_LENGTH"

	// Lookups and lifecycle
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeConflict     ErrorCode = "CONFLICT"

	// Infrastructure
	CodeDatabase    ErrorCode = "DATABASE_ERROR"
	CodeCache       ErrorCode = "CACHE_ERROR"
	CodeUnavailable ErrorCode = "UNAVAILABLE"
	CodeTimeout     ErrorCode = "TIMEOUT"

	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is an application error carrying a code, an optional offending field
// and structured details.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError recognise application errors directly.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(GRPCCode(e.Code), e.Message)
}

// GRPCCode maps an ErrorCode to a gRPC status code.
func GRPCCode(code ErrorCode) codes.Code {
	switch code {
	case CodeInvalidArgument, CodeInvalidQuantity, CodeUnknownLocation, CodeUnknownBloodType,
		CodeNilInput, CodeInvalidGraph, CodeDuplicateNode, CodeDanglingEdge, CodeSelfLoop,
		CodeInvalidLength:
		return codes.InvalidArgument
	case CodeNotFound:
		return codes.NotFound
	case CodeInvalidState:
		return codes.FailedPrecondition
	case CodeConflict:
		return codes.AlreadyExists
	case CodeUnavailable, CodeDatabase, CodeCache:
		return codes.Unavailable
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeUnimplemented:
		return codes.Unimplemented
	default:
		return codes.Internal
	}
}

// New creates an error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func NewWithField(code ErrorCode, message, field string) *Error {
	e := New(code, message)
	e.Field = field
	return e
}

func NewWarning(code ErrorCode, message string) *Error {
	return New(code, message).WithSeverity(SeverityWarning)
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetails adds a key-value pair to the details map.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is reports whether err is an application error with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, CodeInternal for foreign errors.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToGRPC converts any error into a gRPC status error.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPC converts a gRPC error back into an *Error on the client side.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return New(CodeInternal, err.Error())
	}

	var code ErrorCode
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeInvalidArgument
	case codes.NotFound:
		code = CodeNotFound
	case codes.FailedPrecondition:
		code = CodeInvalidState
	case codes.AlreadyExists:
		code = CodeConflict
	case codes.Unavailable:
		code = CodeUnavailable
	case codes.DeadlineExceeded:
		code = CodeTimeout
	case codes.Unimplemented:
		code = CodeUnimplemented
	default:
		code = CodeInternal
	}
	return New(code, st.Message())
}

func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// Predefined errors.
var (
	ErrRequestNotFound = New(CodeNotFound, "request not found")
	ErrDonorNotFound   = New(CodeNotFound, "donor not found")
	ErrNilRequest      = New(CodeNilInput, "request is nil")
)

// ValidationErrors aggregates the results of several checks.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add sorts err into Errors or Warnings by severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// IsValid ignores warnings.
func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// Err collapses the collected errors into a single *Error carrying the code
// of the first one, or nil when there are none.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	first := v.Errors[0]
	if len(v.Errors) == 1 {
		return first
	}
	return New(first.Code, strings.Join(v.ErrorMessages(), "; ")).
		WithDetails("count", len(v.Errors))
}

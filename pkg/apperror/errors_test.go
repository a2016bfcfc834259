package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeNotFound, "request not found"),
			expected: "[NOT_FOUND] request not found",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidQuantity, "units must be positive", "units"),
			expected: "[INVALID_QUANTITY] units must be positive (field: units)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDatabase, "record transition")

	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want codes.Code
	}{
		{CodeInvalidArgument, codes.InvalidArgument},
		{CodeInvalidQuantity, codes.InvalidArgument},
		{CodeUnknownLocation, codes.InvalidArgument},
		{CodeUnknownBloodType, codes.InvalidArgument},
		{CodeDanglingEdge, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeInvalidState, codes.FailedPrecondition},
		{CodeConflict, codes.AlreadyExists},
		{CodeDatabase, codes.Unavailable},
		{CodeTimeout, codes.DeadlineExceeded},
		{CodeUnimplemented, codes.Unimplemented},
		{CodeInternal, codes.Internal},
		{ErrorCode("SOMETHING_ELSE"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GRPCCode(tt.code))
			assert.Equal(t, tt.want, New(tt.code, "x").GRPCStatus().Code())
		})
	}
}

func TestNewDefaults(t *testing.T) {
	err := Newf(CodeNotFound, "donor %q not found", "d-1")

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, `donor "d-1" not found`, err.Message)
	assert.Equal(t, SeverityError, err.Severity)
	assert.NotNil(t, err.Details)

	assert.Equal(t, SeverityWarning, NewWarning(CodeInvalidArgument, "w").Severity)
}

func TestModifiers(t *testing.T) {
	err := New(CodeInvalidState, "request is cancelled").
		WithDetails("status", "Cancelled").
		WithField("request_id").
		WithSeverity(SeverityCritical)

	assert.Equal(t, "Cancelled", err.Details["status"])
	assert.Equal(t, "request_id", err.Field)
	assert.Equal(t, "critical", err.Severity.String())
}

func TestIsAndCode(t *testing.T) {
	wrapped := fmt.Errorf("process: %w", New(CodeInvalidState, "not pending"))

	assert.True(t, Is(wrapped, CodeInvalidState))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, CodeInvalidState, Code(wrapped))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
	assert.False(t, Is(nil, CodeNotFound))
}

func TestToGRPC(t *testing.T) {
	assert.NoError(t, ToGRPC(nil))

	st, ok := status.FromError(ToGRPC(New(CodeNotFound, "request not found")))
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "request not found", st.Message())

	existing := status.Error(codes.Aborted, "aborted")
	assert.Equal(t, existing, ToGRPC(existing))

	st, _ = status.FromError(ToGRPC(errors.New("boom")))
	assert.Equal(t, codes.Internal, st.Code())
}

func TestFromGRPC(t *testing.T) {
	assert.Nil(t, FromGRPC(nil))

	tests := []struct {
		in   codes.Code
		want ErrorCode
	}{
		{codes.InvalidArgument, CodeInvalidArgument},
		{codes.NotFound, CodeNotFound},
		{codes.FailedPrecondition, CodeInvalidState},
		{codes.Unavailable, CodeUnavailable},
		{codes.DeadlineExceeded, CodeTimeout},
		{codes.DataLoss, CodeInternal},
	}
	for _, tt := range tests {
		got := FromGRPC(status.Error(tt.in, "msg"))
		assert.Equal(t, tt.want, got.Code, tt.in.String())
		assert.Equal(t, "msg", got.Message)
	}

	assert.Equal(t, CodeInternal, FromGRPC(errors.New("plain")).Code)
}

func TestRoundTripThroughGRPC(t *testing.T) {
	original := New(CodeInvalidState, "request already fulfilled")
	back := FromGRPC(ToGRPC(original))

	assert.Equal(t, CodeInvalidState, back.Code)
	assert.Equal(t, original.Message, back.Message)
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())

	v.AddWarning(CodeInvalidArgument, "location has no roads")
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())

	v.AddErrorWithField(CodeDuplicateNode, "duplicate location", "gulberg")
	require.True(t, v.HasErrors())
	assert.True(t, Is(v.Err(), CodeDuplicateNode))

	other := NewValidationErrors()
	other.AddError(CodeSelfLoop, "edge gulberg-gulberg is a loop")
	other.Add(NewWarning(CodeInvalidArgument, "another warning"))
	v.Merge(other)
	v.Merge(nil)

	assert.Len(t, v.Errors, 2)
	assert.Len(t, v.Warnings, 2)
	assert.Len(t, v.ErrorMessages(), 2)

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, CodeDuplicateNode, Code(err))
	assert.Contains(t, err.Error(), "duplicate location")
	assert.Contains(t, err.Error(), "loop")
}

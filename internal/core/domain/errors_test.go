package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		err  error
		want FailureKind
	}{
		{nil, FailureNone},
		{ErrUnauthenticated, FailureUnauthenticated},
		{ErrForbidden, FailureForbidden},
		{ErrNotFound, FailureNotFound},
		{ErrDuplicate, FailureDuplicate},
		{ErrInvalidInput, FailureValidation},
		{ErrUnreachable, FailureUnreachable},
		{ErrServerFault, FailureServerFault},
		{errors.New("something odd"), FailureServerFault},
	}
	for _, tc := range cases {
		if got := ClassifyFailure(tc.err); got != tc.want {
			t.Errorf("ClassifyFailure(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestClassifyFailureSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("extend item-7: %w", ErrForbidden)
	if got := ClassifyFailure(err); got != FailureForbidden {
		t.Errorf("ClassifyFailure(wrapped) = %q, want %q", got, FailureForbidden)
	}
}

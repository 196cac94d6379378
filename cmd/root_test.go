package cmd

import (
	"errors"
	"testing"

	"convoy/internal/api"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation failure",
			err:  api.NewValidationError(api.ValidationIssue{Kind: api.IssueCircularDependency}),
			want: ExitCodeValidation,
		},
		{
			name: "wrapped validation failure",
			err:  errorsJoin(api.NewValidationError()),
			want: ExitCodeValidation,
		},
		{
			name: "release failed",
			err:  &releaseFailedError{result: &api.CoordinateResult{ReleaseID: "rel-1"}},
			want: ExitCodeReleaseFailed,
		},
		{
			name: "general error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestSetAndGetVersion(t *testing.T) {
	prev := GetVersion()
	defer SetVersion(prev)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}

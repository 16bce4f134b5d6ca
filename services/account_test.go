package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbus-sec/authgate/shared"
)

func TestValidatePasswordPolicy(t *testing.T) {
	t.Parallel()
	svc := &AccountService{minPasswordLength: 8}

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Str0ngEnough", ""},
		{"valid minimal", "abcdefg1", ""},
		{"too short", "abc1", "at least 8 characters"},
		{"no digit", "abcdefgh", "one letter and one digit"},
		{"no letter", "12345678!", "one letter and one digit"},
		{"common password", "password123", "too common"},
		{"common password uppercased", "PASSWORD123", "too common"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.validatePasswordPolicy(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			appErr, ok := shared.GetAppError(err)
			require.True(t, ok)
			require.Equal(t, 400, appErr.StatusCode)
			require.Contains(t, appErr.Message, tt.wantErr)
		})
	}
}

func TestValidatePasswordPolicyCustomMinLength(t *testing.T) {
	t.Parallel()
	svc := &AccountService{minPasswordLength: 12}

	require.Error(t, svc.validatePasswordPolicy("abcdefg1"))
	require.NoError(t, svc.validatePasswordPolicy("abcdefghijk1"))
}

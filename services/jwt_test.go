package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nimbus-sec/authgate/shared"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestJWTService() *JWTService {
	return &JWTService{
		jwtSecretKey:         testSecret,
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	}
}

func TestJWTIssueAndVerify(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	token, err := svc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, shared.TokenKindAccess, claims.Kind)
	require.WithinDuration(t, time.Now(), claims.IssuedAt, time.Minute)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestJWTIssueExtraClaims(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	token, err := svc.Issue("user-123", shared.TokenKindAccess, time.Hour, map[string]interface{}{
		"purpose": "password_reset",
		"sub":     "attacker", // reserved, must be ignored
	})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.Equal(t, "password_reset", claims.ExtraString("purpose"))
}

func TestJWTIssueEmptySubject(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	_, err := svc.Issue("", shared.TokenKindAccess, time.Hour, nil)
	require.Error(t, err)
}

func TestJWTVerifyExpired(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	token, err := svc.Issue("user-123", shared.TokenKindAccess, -time.Minute, nil)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestJWTVerifyTampered(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	token, err := svc.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	require.ErrorIs(t, err, shared.ErrTokenMalformed)
}

func TestJWTVerifyWrongSecret(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()
	other := &JWTService{jwtSecretKey: "a-different-secret"}

	token, err := other.Issue("user-123", shared.TokenKindAccess, time.Hour, nil)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, shared.ErrTokenMalformed)
}

func TestJWTVerifyGarbage(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(input)
		require.ErrorIs(t, err, shared.ErrTokenMalformed, "input %q", input)
	}
}

func TestJWTPeekUnverified(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	// Expired and signed with another key: peek still decodes it.
	other := &JWTService{jwtSecretKey: "a-different-secret"}
	token, err := other.Issue("user-456", shared.TokenKindRefresh, -time.Minute, nil)
	require.NoError(t, err)

	claims, err := svc.PeekUnverified(token)
	require.NoError(t, err)
	require.Equal(t, "user-456", claims.Subject)
	require.Equal(t, shared.TokenKindRefresh, claims.Kind)
}

func TestExtractTokenFromHeader(t *testing.T) {
	t.Parallel()
	svc := newTestJWTService()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"case insensitive scheme", "bearer abc.def.ghi", "abc.def.ghi", nil},
		{"missing header", "", "", shared.ErrMissingAuthHeader},
		{"wrong scheme", "Basic abc.def.ghi", "", shared.ErrInvalidAuthHeader},
		{"no token", "Bearer", "", shared.ErrInvalidAuthHeader},
		{"too many parts", "Bearer a b", "", shared.ErrInvalidAuthHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ExtractTokenFromHeader(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

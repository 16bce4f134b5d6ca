package services

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/model"
	"github.com/nimbus-sec/authgate/shared"
)

// AccountService implements registration, login, token refresh, logout and
// password reset on top of the token codec and the revocation store.
type AccountService struct {
	context.DefaultService

	minPasswordLength int

	sqlSvc        *SqlService
	jwtSvc        *JWTService
	revocationSvc *RevocationService
	emailSvc      *EmailService
	monitoringSvc *MonitoringService
}

const ACCOUNT_SVC = "account_svc"

const (
	resetTokenTTL     = 15 * time.Minute
	resetPurposeClaim = "purpose"
	resetPurpose      = "password_reset"
)

// Passwords nobody should be allowed to keep.
var weakPasswords = []string{
	"password",
	"12345678",
	"qwerty",
	"abc123",
	"password123",
}

func (svc AccountService) Id() string {
	return ACCOUNT_SVC
}

func (svc *AccountService) Configure(ctx *context.Context) error {
	svc.minPasswordLength = 8
	if v := os.Getenv("MIN_PASSWORD_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			svc.minPasswordLength = n
		}
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *AccountService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.revocationSvc = svc.Service(REVOCATION_SVC).(*RevocationService)
	svc.emailSvc = svc.Service(EMAIL_SVC).(*EmailService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ==================== REGISTRATION & LOGIN ====================

func (svc *AccountService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if err := svc.validatePasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	user := &model.User{
		ID:           id.String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         "user",
		IsActive:     true,
	}

	if err := svc.sqlSvc.CreateUser(user); err != nil {
		if IsConflict(err) {
			return nil, shared.NewBadRequestError(nil, "email is already registered")
		}
		return nil, shared.NewInternalError(err)
	}

	log.WithField("user_id", user.ID).Info("User registered")

	return &dto.RegisterResponse{
		Success: true,
		Message: "registration successful",
		UserID:  user.ID,
	}, nil
}

func (svc *AccountService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := svc.sqlSvc.FindUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if IsNotFound(err) {
			return nil, shared.NewUnauthorizedError(shared.CodeInvalidCredentials, "invalid email or password")
		}
		return nil, shared.NewInternalError(err)
	}

	if !user.IsActive {
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidCredentials, "invalid email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidCredentials, "invalid email or password")
	}

	// Best-effort: a failed timestamp update must not block the login.
	if err := svc.sqlSvc.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.WithError(err).Warn("Failed to update last login")
	}

	pair, err := svc.IssueSession(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success:      true,
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		TokenType:    shared.TokenTypeBearer,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User: &dto.UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	}, nil
}

// ==================== SESSIONS ====================

// IssueSession mints a fresh access/refresh pair for the user.
func (svc *AccountService) IssueSession(userID string) (*dto.TokenPair, error) {
	access, err := svc.jwtSvc.Issue(userID, shared.TokenKindAccess, svc.jwtSvc.AccessTokenDuration, nil)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	svc.monitoringSvc.RecordTokenIssued(shared.TokenKindAccess)

	refresh, err := svc.jwtSvc.Issue(userID, shared.TokenKindRefresh, svc.jwtSvc.RefreshTokenDuration, nil)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	svc.monitoringSvc.RecordTokenIssued(shared.TokenKindRefresh)

	return &dto.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(svc.jwtSvc.AccessTokenDuration.Seconds()),
	}, nil
}

// RefreshSession exchanges a valid refresh token for a new pair. The spent
// refresh token is revoked so it cannot be replayed.
func (svc *AccountService) RefreshSession(refreshToken string) (*dto.AuthResponse, error) {
	claims, err := svc.jwtSvc.Verify(refreshToken)
	if err != nil {
		if err == shared.ErrTokenExpired {
			return nil, shared.NewUnauthorizedError(shared.CodeTokenExpired, "refresh token has expired")
		}
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid refresh token")
	}

	if claims.Kind != shared.TokenKindRefresh {
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid refresh token")
	}

	if svc.revocationSvc.IsRevoked(refreshToken) {
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidToken, "refresh token has been revoked")
	}

	pair, err := svc.IssueSession(claims.Subject)
	if err != nil {
		return nil, err
	}

	svc.revocationSvc.Revoke(refreshToken)

	return &dto.AuthResponse{
		Success:      true,
		UserID:       claims.Subject,
		AccessToken:  pair.AccessToken,
		TokenType:    shared.TokenTypeBearer,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout revokes the presented tokens. Best-effort: logout always succeeds
// so a client can discard its session even when the store misbehaves.
func (svc *AccountService) Logout(accessToken, refreshToken string) {
	if accessToken != "" {
		svc.revocationSvc.Revoke(accessToken)
	}
	if refreshToken != "" {
		svc.revocationSvc.Revoke(refreshToken)
	}
}

// ==================== PASSWORD RESET ====================

// RequestPasswordReset issues a short-lived reset token and emails it. The
// outcome is identical whether or not the account exists, so the endpoint
// cannot be used to probe for registered emails.
func (svc *AccountService) RequestPasswordReset(email string) {
	user, err := svc.sqlSvc.FindUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !IsNotFound(err) {
			log.WithError(err).Warn("Password reset lookup failed")
		}
		return
	}

	token, err := svc.jwtSvc.Issue(user.ID, shared.TokenKindAccess, resetTokenTTL, map[string]interface{}{
		resetPurposeClaim: resetPurpose,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to issue password reset token")
		return
	}

	if err := svc.emailSvc.SendPasswordResetEmail(user.Email, user.DisplayName, token); err != nil {
		log.WithError(err).Warn("Failed to send password reset email")
	}
}

// ConfirmPasswordReset validates the reset token, applies the new password
// and revokes the token so it is single-use.
func (svc *AccountService) ConfirmPasswordReset(token, newPassword string) error {
	claims, err := svc.jwtSvc.Verify(token)
	if err != nil {
		if err == shared.ErrTokenExpired {
			return shared.NewUnauthorizedError(shared.CodeTokenExpired, "reset token has expired")
		}
		return shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid reset token")
	}

	if claims.ExtraString(resetPurposeClaim) != resetPurpose {
		return shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid reset token")
	}

	if svc.revocationSvc.IsRevoked(token) {
		return shared.NewUnauthorizedError(shared.CodeInvalidToken, "reset token has already been used")
	}

	if err := svc.validatePasswordPolicy(newPassword); err != nil {
		return err
	}

	user, err := svc.sqlSvc.FindUserByID(claims.Subject)
	if err != nil {
		if IsNotFound(err) {
			return shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid reset token")
		}
		return shared.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewInternalError(err)
	}

	user.PasswordHash = string(hash)
	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(err)
	}

	svc.revocationSvc.Revoke(token)

	log.WithField("user_id", user.ID).Info("Password reset completed")
	return nil
}

// ==================== PROFILE ====================

func (svc *AccountService) GetProfile(userID string) (*dto.ProfileResponse, error) {
	user, err := svc.sqlSvc.FindUserByID(userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, shared.NewNotFoundError("user not found")
		}
		return nil, shared.NewInternalError(err)
	}
	return profileResponse(user), nil
}

func (svc *AccountService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	user, err := svc.sqlSvc.FindUserByID(userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, shared.NewNotFoundError("user not found")
		}
		return nil, shared.NewInternalError(err)
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Website != nil {
		user.Website = *req.Website
	}

	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return nil, shared.NewInternalError(err)
	}

	return profileResponse(user), nil
}

func profileResponse(user *model.User) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
		Website:     user.Website,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ==================== PASSWORD POLICY ====================

func (svc *AccountService) validatePasswordPolicy(password string) error {
	if len(password) < svc.minPasswordLength {
		return shared.NewBadRequestError(nil,
			"password must be at least "+strconv.Itoa(svc.minPasswordLength)+" characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return shared.NewBadRequestError(nil, "password must contain at least one letter and one digit")
	}

	lowered := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if lowered == weak {
			return shared.NewBadRequestError(nil, "password is too common")
		}
	}

	return nil
}

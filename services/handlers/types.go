package handlers

import (
	"github.com/nimbus-sec/authgate/dto"
)

type AccountServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshSession(refreshToken string) (*dto.AuthResponse, error)
	Logout(accessToken, refreshToken string)
	RequestPasswordReset(email string)
	ConfirmPasswordReset(token, newPassword string) error
	GetProfile(userID string) (*dto.ProfileResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
}

type KnowledgeServiceInterface interface {
	GetEntries(limit int, authenticated bool) (*dto.KnowledgeListResponse, error)
}

type RateLimitServiceInterface interface {
	Configs() map[string]dto.RateLimitConfigInfo
	Reset(identifier, endpointType string) bool
	TrackedIdentifiers() int
}

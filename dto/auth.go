package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email" example:"user@example.com"`
	Password    string `json:"password" validate:"required" example:"SecurePass123"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100" example:"John Doe"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"SecurePass123"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func (r RefreshTokenRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
}

func (p PasswordResetRequest) Validate() error {
	return GetValidator().Struct(p)
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	NewPassword string `json:"new_password" validate:"required" example:"NewPass123"`
}

func (p PasswordResetConfirmRequest) Validate() error {
	return GetValidator().Struct(p)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

// AuthResponse is the standard success envelope for token issuance.
type AuthResponse struct {
	Success      bool      `json:"success" example:"true"`
	UserID       string    `json:"user_id" example:"usr_123456789"`
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string    `json:"token_type" example:"Bearer"`
	RefreshToken string    `json:"refresh_token,omitempty" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn    int64     `json:"expires_in,omitempty" example:"3600"`
	User         *UserInfo `json:"user,omitempty"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresIn    int64  `json:"expires_in" example:"3600"`
}

type UserInfo struct {
	ID          string `json:"id" example:"usr_123456789"`
	Email       string `json:"email" example:"user@example.com"`
	DisplayName string `json:"display_name,omitempty" example:"John Doe"`
}

type RegisterResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"registration successful"`
	UserID  string `json:"user_id" example:"usr_123456789"`
}

// ==================== USER PROFILE DTOs ====================

type ProfileResponse struct {
	ID          string     `json:"id" example:"usr_123456789"`
	Email       string     `json:"email" example:"user@example.com"`
	DisplayName string     `json:"display_name" example:"John Doe"`
	AvatarURL   string     `json:"avatar_url,omitempty" example:"https://cdn.example.com/a.png"`
	Bio         string     `json:"bio,omitempty" example:"hello"`
	Website     string     `json:"website,omitempty" example:"https://example.com"`
	Role        string     `json:"role" example:"user"`
	IsActive    bool       `json:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2023-01-15T10:30:00Z"`
	CreatedAt   time.Time  `json:"created_at" example:"2023-01-01T00:00:00Z"`
	UpdatedAt   time.Time  `json:"updated_at" example:"2023-01-15T10:30:00Z"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100" example:"New Name"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url" example:"https://cdn.example.com/a.png"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000" example:"hello"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url" example:"https://example.com"`
}

func (u UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ==================== KNOWLEDGE BASE DTOs ====================

type KnowledgeEntryResponse struct {
	ID        string    `json:"id" example:"kb_123456789"`
	Title     string    `json:"title" example:"Getting started"`
	Content   string    `json:"content" example:"..."`
	Tags      string    `json:"tags,omitempty" example:"intro,faq"`
	CreatedAt time.Time `json:"created_at" example:"2023-01-01T00:00:00Z"`
}

type KnowledgeListResponse struct {
	Entries       []KnowledgeEntryResponse `json:"entries"`
	Count         int                      `json:"count" example:"5"`
	Authenticated bool                     `json:"authenticated" example:"false"`
}

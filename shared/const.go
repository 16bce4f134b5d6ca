package shared

const (
	UserID = "user_id"
	Claims = "claims"

	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"

	TokenTypeBearer = "Bearer"
)

// Machine-readable error codes carried in the error envelope.
const (
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidAuthHeader  = "INVALID_AUTH_HEADER"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeNotFound           = "NOT_FOUND"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

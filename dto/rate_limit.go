package dto

// RateLimitInfo describes the state of one identifier's sliding window after
// a check. Reset is a unix epoch: on rejection it is the moment the oldest
// retained request leaves the window; on success, now + window.
type RateLimitInfo struct {
	Allowed   bool  `json:"allowed" example:"true"`
	Limit     int   `json:"limit" example:"60"`
	Remaining int   `json:"remaining" example:"42"`
	Reset     int64 `json:"reset" example:"1700000060"`
}

// RateLimitConfigInfo is the admin-facing view of one endpoint budget.
type RateLimitConfigInfo struct {
	EndpointType  string `json:"endpoint_type" example:"login"`
	MaxRequests   int    `json:"max_requests" example:"10"`
	WindowSeconds int    `json:"window_seconds" example:"900"`
	Description   string `json:"description" example:"Login attempts rate limit"`
	IsActive      bool   `json:"is_active" example:"true"`
}

// RateLimitStatsResponse is the admin rate-limit overview.
type RateLimitStatsResponse struct {
	Configs            map[string]RateLimitConfigInfo `json:"configs"`
	TrackedIdentifiers int                            `json:"tracked_identifiers" example:"12"`
}

// RateLimitResetRequest clears one identifier's history for an endpoint type.
type RateLimitResetRequest struct {
	Identifier   string `json:"identifier" validate:"required" example:"ip:203.0.113.7"`
	EndpointType string `json:"endpoint_type" validate:"required" example:"login"`
}

func (r RateLimitResetRequest) Validate() error {
	return GetValidator().Struct(r)
}

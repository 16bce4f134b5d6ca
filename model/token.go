package model

import "time"

// Claims is the decoded payload of a signed identity token. The fields the
// gateway's logic depends on are typed; anything else the issuer embedded
// rides along in Extra.
type Claims struct {
	Subject   string                 `json:"sub"`
	IssuedAt  time.Time              `json:"iat"`
	ExpiresAt time.Time              `json:"exp"`
	Kind      string                 `json:"type"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// ExtraString returns a string-typed extension claim, or "" when absent or
// of another type.
func (c *Claims) ExtraString(key string) string {
	if c.Extra == nil {
		return ""
	}
	if v, ok := c.Extra[key].(string); ok {
		return v
	}
	return ""
}

package utils

import "time"

// Request context keys shared by handlers and flows
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
	AdminIDKey   ContextKey = "admin_id"
	TimeoutKey   ContextKey = "timeout"

	// CancelFuncKey keeps the request cancel func reachable for the lifetime
	// of the derived context
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// CaptchaChallengeTTL is the time window a captcha challenge stays valid
	CaptchaChallengeTTL = 2 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Sitemap queue constants
const (
	// SitemapQueueKey is the Redis list the ping producer writes to
	SitemapQueueKey = "tasks:sitemap"
)

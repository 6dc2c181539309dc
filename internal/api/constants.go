package api

// Cookie names and scopes for browser sessions.
const (
	AccessCookieName  = "journal_access"
	RefreshCookieName = "journal_refresh"

	// The refresh cookie is only sent to the auth endpoints.
	refreshCookiePath = "/api/v1/auth"
)

// multipartOverhead is the slack allowed on top of the media size limit for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

// Cache-Control header values.
const (
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheOneDay    = "public, max-age=86400"
	CacheNoStore   = "no-store"
)

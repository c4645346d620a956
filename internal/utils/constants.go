package utils

const (
	// CORSLowSecurityAllowedOriginLocalhost is appended to the allowed
	// origins when CORS high security is disabled (local development).
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
)

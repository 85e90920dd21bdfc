package http

import "time"

// Common JSON keys
const (
	JSONKeyError = "error"
	JSONKeyKind  = "kind"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"

	ContextKeyRequestID = "request_id"
	ContextKeySubject   = "subject"

	BearerPrefix = "Bearer "
)

const (
	PathHealth  = "/health"
	PathMintNFT = "/mintnft"
)

const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second
	CORSMaxAge        = 10 * time.Minute
)

const (
	HTTPErrorUnauthorizedText  = "unauthorized"
	HTTPErrorMinterMissingText = "minter not configured"
)

package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidName = "invalid_name"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeJoinFailed         = "join_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

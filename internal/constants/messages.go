package constants

// Error messages used in API responses.
// These are the human-readable messages returned in the "message" field.
const (
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgForbiddenOrigin    = "Origin not allowed"
	MsgNotFound           = "Resource not found"
	MsgRateLimited        = "Too many requests, slow down"

	MsgLinkNotFound  = "Link not found"
	MsgSchemaCreated = "Database schema is ready"
)

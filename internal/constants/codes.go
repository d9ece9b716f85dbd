package constants

// Error codes used in API responses.
// These are the machine-readable codes returned in the "error" field.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeForbiddenOrigin = "FORBIDDEN_ORIGIN"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"

	CodeLinkNotFound = "LINK_NOT_FOUND"
)

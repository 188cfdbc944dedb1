package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXAdminToken   = "X-Admin-Token"

	// Content Types
	ContentTypeForm = "application/x-www-form-urlencoded"

	APIVersionPrefix = "/api/v1"

	// Context keys
	ContextKeyRequestID = "request_id"
	ContextKeyAdminSub  = "admin_subject"

	// Database table names
	TableLicenses = "licenses"
	TableAuditLog = "audit_log"
	TablePayments = "payments"

	// License batch limits
	MaxGenerateQuantity = 100

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
)

package cnst

const (
	// AppName is the service name used in logs and traces
	AppName = "migestion"

	// TokenIssuer is the iss claim stamped on every token this service signs
	TokenIssuer = "migestion"
	// TokenAudience is the aud claim required on access tokens
	TokenAudience = "migestion-api"

	// APIPrefix is the base path for all REST endpoints
	APIPrefix = "/api"
)

// Gin context keys populated by the authentication middleware.
const (
	CtxIdentity = "identity"
	CtxTenantID = "tenantID"
)

// HTTP headers understood by the middleware chain.
const (
	HeaderAuthorization  = "Authorization"
	HeaderTenantID       = "X-Tenant-ID"
	HeaderAcceptLanguage = "Accept-Language"
)

// Supported response languages.
const (
	LangEN = "en"
	LangES = "es"
)

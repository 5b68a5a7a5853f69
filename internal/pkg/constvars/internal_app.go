package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_PRINCIPAL_KEY            ContextKey = "principal"
)

const (
	REQUEST_ID_PREFIX = "TLH_SVC_"
)

const (
	AppPaginationUrlFormat = "%s?page=%d&page_size=%d"
	DefaultPageSize        = 20
	MaxPageSize            = 100
)

const (
	APP_ENV_PRODUCTION  = "production"
	APP_ENV_DEVELOPMENT = "development"
)

const (
	RoleTypePatient = "patient"
	RoleTypeDoctor  = "doctor"
	RoleTypeAdmin   = "admin"
	RoleTypeSystem  = "system"
)

const (
	DateFormatYYYYMMDD = "2006-01-02"
	TimeFormatHHMM     = "15:04"
)

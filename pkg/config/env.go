package config

// EnvPrefix is the envconfig prefix; each field also names its full variable explicitly.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"
	EnvLogFormat    = "LOG_FORMAT"
	EnvCORSOrigins  = "STOREFRONT_CORS_ORIGINS"

	EnvCMSSpaceID     = "STOREFRONT_CMS_SPACE_ID"
	EnvCMSAccessToken = "STOREFRONT_CMS_DELIVERY_TOKEN"
	EnvCMSEnvironment = "STOREFRONT_CMS_ENV"
	EnvCMSBaseURL     = "STOREFRONT_CMS_BASE_URL"
	EnvCMSTimeout     = "STOREFRONT_CMS_TIMEOUT"
	EnvCMSPageLimit   = "STOREFRONT_CMS_PAGE_LIMIT"

	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvRedisAddr        = "STOREFRONT_REDIS_ADDR"
	EnvRedisCategoryTTL = "STOREFRONT_REDIS_CATEGORY_TTL"

	EnvSessionCookie        = "STOREFRONT_SESSION_COOKIE"
	EnvSessionIdleTTL       = "STOREFRONT_SESSION_IDLE_TTL"
	EnvSessionSweepInterval = "STOREFRONT_SESSION_SWEEP_INTERVAL"

	EnvSearchDebounce   = "STOREFRONT_SEARCH_DEBOUNCE"
	EnvToastTTL         = "STOREFRONT_TOAST_TTL"
	EnvPromoCode        = "STOREFRONT_PROMO_CODE"
	EnvPromoPercent     = "STOREFRONT_PROMO_PERCENT"
	EnvFreeShippingOver = "STOREFRONT_FREE_SHIPPING_OVER"
	EnvFlatShipping     = "STOREFRONT_FLAT_SHIPPING"
)

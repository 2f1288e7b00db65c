package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	CMS        CMSConfig
	Redis      RedisConfig
	Session    SessionConfig
	Storefront StorefrontConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.CMS.normalize()
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string   `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CMSConfig points the catalog at a headless CMS delivery API. Space id and token are
// optional at load time: a missing pair is logged at startup and yields an empty catalog.
type CMSConfig struct {
	SpaceID     string        `envconfig:"STOREFRONT_CMS_SPACE_ID"`
	AccessToken string        `envconfig:"STOREFRONT_CMS_DELIVERY_TOKEN"`
	Environment string        `envconfig:"STOREFRONT_CMS_ENV" default:"master"`
	BaseURL     string        `envconfig:"STOREFRONT_CMS_BASE_URL" default:"https://cdn.contentful.com"`
	Timeout     time.Duration `envconfig:"STOREFRONT_CMS_TIMEOUT" default:"8s"`
	PageLimit   int           `envconfig:"STOREFRONT_CMS_PAGE_LIMIT" default:"12"`
}

// Configured reports whether both credentials required by the delivery API are present.
func (c CMSConfig) Configured() bool {
	return strings.TrimSpace(c.SpaceID) != "" && strings.TrimSpace(c.AccessToken) != ""
}

// Missing lists the env vars that still need a value for the catalog to work.
func (c CMSConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.SpaceID) == "" {
		missing = append(missing, EnvCMSSpaceID)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		missing = append(missing, EnvCMSAccessToken)
	}
	return missing
}

func (c *CMSConfig) normalize() {
	c.SpaceID = strings.TrimSpace(c.SpaceID)
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	c.Environment = strings.TrimSpace(c.Environment)
	if c.Environment == "" {
		c.Environment = "master"
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.PageLimit <= 0 {
		c.PageLimit = 12
	}
}

// RedisConfig is optional; without a URL or address the service keeps all state in process.
type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
	CategoryTTL  time.Duration `envconfig:"STOREFRONT_REDIS_CATEGORY_TTL" default:"24h"`
}

// Enabled reports whether a Redis endpoint was supplied.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	CookieName    string        `envconfig:"STOREFRONT_SESSION_COOKIE" default:"sf_session"`
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"2h"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"5m"`
}

type StorefrontConfig struct {
	SearchDebounce   time.Duration `envconfig:"STOREFRONT_SEARCH_DEBOUNCE" default:"300ms"`
	ToastTTL         time.Duration `envconfig:"STOREFRONT_TOAST_TTL" default:"1800ms"`
	PromoCode        string        `envconfig:"STOREFRONT_PROMO_CODE" default:"SAVE10"`
	PromoPercent     int           `envconfig:"STOREFRONT_PROMO_PERCENT" default:"10"`
	FreeShippingOver float64       `envconfig:"STOREFRONT_FREE_SHIPPING_OVER" default:"200"`
	FlatShipping     float64       `envconfig:"STOREFRONT_FLAT_SHIPPING" default:"5"`
}

func (s *StorefrontConfig) validate() error {
	s.PromoCode = strings.ToUpper(strings.TrimSpace(s.PromoCode))
	if s.PromoPercent < 0 || s.PromoPercent > 100 {
		return fmt.Errorf("%s must be between 0 and 100", EnvPromoPercent)
	}
	if s.FreeShippingOver < 0 || s.FlatShipping < 0 {
		return fmt.Errorf("%s and %s must be non-negative", EnvFreeShippingOver, EnvFlatShipping)
	}
	if s.SearchDebounce < 0 {
		return fmt.Errorf("%s must not be negative", EnvSearchDebounce)
	}
	if s.ToastTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvToastTTL)
	}
	return nil
}

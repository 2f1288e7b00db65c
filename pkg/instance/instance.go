package instance

import (
	"os"
	"strings"
)

// EnvInstanceID overrides the derived instance identifier.
const EnvInstanceID = "STOREFRONT_INSTANCE_ID"

const fallbackID = "storefront-0"

// GetID returns the identifier of this process: the explicit override, then the hostname.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}

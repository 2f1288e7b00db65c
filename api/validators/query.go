package validators

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
)

// ParseQueryInt reads key as an integer in [min, max]; a missing value yields defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQuerySort rejects unknown orders; an absent value is the default order.
func ParseQuerySort(r *http.Request, key string) (enums.SortOrder, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return enums.SortOrderDefault, nil
	}
	order, err := enums.ParseSortOrder(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown sort order").WithDetails(map[string]any{"field": key})
	}
	return order, nil
}

// ParseQueryString returns SanitizeString of the value.
func ParseQueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

// SanitizeString drops control characters, trims surrounding space and keeps at most maxLen runes.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input))
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}

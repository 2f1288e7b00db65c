package types

// SuccessEnvelope wraps every 2xx body; Meta is set on paginated listings only.
type SuccessEnvelope struct {
	Data any       `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

// PageMeta describes an offset-paginated listing. Page is zero-based.
type PageMeta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	PageCount int `json:"page_count"`
}

// APIError is the public face of a failure. RequestID lets a shopper quote the failing call.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

package errors

import (
	"fmt"
)

// maxChainEntries bounds how much of a deep or joined chain reaches the logs.
const maxChainEntries = 12

// ErrorDump is the log-only view of an error: never sent to clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	Truncated  bool     `json:"truncated,omitempty"`
}

// Dump flattens err for structured logging. Joined errors (errors.Join, multierr) are walked
// breadth-first so every branch shows up in Chain.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Retryable = typed.Code().Metadata().Retryable
	}

	queue := []error{err}
	for len(queue) > 0 {
		if len(d.Chain) == maxChainEntries {
			d.Truncated = true
			break
		}
		current := queue[0]
		queue = queue[1:]
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", current, current))

		switch u := current.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if inner != nil {
					queue = append(queue, inner)
				}
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				queue = append(queue, inner)
			}
		}
	}
	return d
}

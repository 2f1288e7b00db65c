package enums

import "fmt"

// CheckoutState tracks where a checkout flow sits between editing the form and a placed order.
type CheckoutState string

const (
	CheckoutStateEditing    CheckoutState = "editing"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStatePlaced     CheckoutState = "placed"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateEditing,
	CheckoutStateSubmitting,
	CheckoutStatePlaced,
}

// String implements fmt.Stringer.
func (c CheckoutState) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutState.
func (c CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}

package enums

import "fmt"

// OversellPolicy controls what a decrement does when stock is short.
type OversellPolicy string

const (
	OversellClamp  OversellPolicy = "clamp"
	OversellReject OversellPolicy = "reject"
)

var validOversellPolicies = []OversellPolicy{
	OversellClamp,
	OversellReject,
}

// String implements fmt.Stringer.
func (o OversellPolicy) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OversellPolicy.
func (o OversellPolicy) IsValid() bool {
	for _, candidate := range validOversellPolicies {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOversellPolicy converts raw input into a OversellPolicy.
func ParseOversellPolicy(value string) (OversellPolicy, error) {
	for _, candidate := range validOversellPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid oversell policy %q", value)
}

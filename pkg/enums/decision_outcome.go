package enums

import "fmt"

// DecisionOutcome is the vendor's verdict on an order under review.
type DecisionOutcome string

const (
	DecisionAcceptWithProof DecisionOutcome = "ACCEPT_WITH_PROOF"
	DecisionAcceptCash      DecisionOutcome = "ACCEPT_CASH"
	DecisionReject          DecisionOutcome = "REJECT"
)

var validDecisionOutcomes = []DecisionOutcome{
	DecisionAcceptWithProof,
	DecisionAcceptCash,
	DecisionReject,
}

// String implements fmt.Stringer.
func (d DecisionOutcome) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DecisionOutcome.
func (d DecisionOutcome) IsValid() bool {
	for _, candidate := range validDecisionOutcomes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDecisionOutcome converts raw input into a DecisionOutcome.
func ParseDecisionOutcome(value string) (DecisionOutcome, error) {
	for _, candidate := range validDecisionOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid decision outcome %q", value)
}

// IsAccept reports whether the outcome confirms the order.
func (d DecisionOutcome) IsAccept() bool {
	return d == DecisionAcceptWithProof || d == DecisionAcceptCash
}

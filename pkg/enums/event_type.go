package enums

import "fmt"

// EventType is the kind of a transaction event in the ledger input stream.
type EventType string

const (
	EventTypeDeposit    EventType = "deposit"
	EventTypeWithdrawal EventType = "withdrawal"
	EventTypeDispute    EventType = "dispute"
	EventTypeResolve    EventType = "resolve"
	EventTypeChargeback EventType = "chargeback"
)

var validEventTypes = []EventType{
	EventTypeDeposit,
	EventTypeWithdrawal,
	EventTypeDispute,
	EventTypeResolve,
	EventTypeChargeback,
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known event type.
func (t EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// CarriesAmount reports whether events of this type move funds by themselves.
func (t EventType) CarriesAmount() bool {
	return t == EventTypeDeposit || t == EventTypeWithdrawal
}

// ParseEventType converts raw input into EventType. Matching is exact.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

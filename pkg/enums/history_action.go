package enums

import "fmt"

// HistoryAction maps to the history_action_enum enum in Postgres.
type HistoryAction string

const (
	HistoryActionCreated HistoryAction = "CREATED"
	// DEAL_CONFIRMED is reserved in the DB enum. Confirming the deal writes
	// no history row today; the PRICED entry records the phase.
	HistoryActionDealConfirmed    HistoryAction = "DEAL_CONFIRMED"
	HistoryActionPriced           HistoryAction = "PRICED"
	HistoryActionProviderShareSet HistoryAction = "PROVIDER_SHARE_SET"
	HistoryActionAssigned         HistoryAction = "ASSIGNED"
	HistoryActionAccepted         HistoryAction = "ACCEPTED"
	HistoryActionCheckedIn        HistoryAction = "CHECKED_IN"
	HistoryActionCancelled        HistoryAction = "CANCELLED"
	HistoryActionRejected         HistoryAction = "REJECTED"
	HistoryActionCompleted        HistoryAction = "COMPLETED"
)

var validHistoryActions = []HistoryAction{
	HistoryActionCreated,
	HistoryActionDealConfirmed,
	HistoryActionPriced,
	HistoryActionProviderShareSet,
	HistoryActionAssigned,
	HistoryActionAccepted,
	HistoryActionCheckedIn,
	HistoryActionCancelled,
	HistoryActionRejected,
	HistoryActionCompleted,
}

// IsValid reports whether the value matches the canonical history action enum.
func (a HistoryAction) IsValid() bool {
	for _, candidate := range validHistoryActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseHistoryAction converts raw input into HistoryAction.
func ParseHistoryAction(value string) (HistoryAction, error) {
	for _, candidate := range validHistoryActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid history action %q", value)
}

package enum

import "encoding/json"

// PrintState tracks a receipt from dispatch until someone confirms it came out.
type PrintState int

const (
	PrintPending PrintState = iota
	PrintCompleted
	PrintAwaitingConfirmation
	PrintConfirmed
	PrintFailed
)

func (s PrintState) String() string {
	return [...]string{"pending", "completed", "awaiting_manual_confirmation", "confirmed", "failed"}[s]
}

// Closed reports whether no further transition is expected.
func (s PrintState) Closed() bool {
	return s == PrintCompleted || s == PrintConfirmed || s == PrintFailed
}

func (s PrintState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

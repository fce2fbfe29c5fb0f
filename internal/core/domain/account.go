package domain

// AccountID is the durable, transport-assigned identifier of a chat account.
type AccountID int64

// GroupID identifies one group chat. Transports may use negative numeric
// ids, so the id is carried as an opaque string.
type GroupID string

// Account links a durable identifier to its last observed public handle.
// Handles are stored without their leading marker character ("@").
type Account struct {
	ID     AccountID `json:"id"`
	Handle string    `json:"handle,omitempty"`
}

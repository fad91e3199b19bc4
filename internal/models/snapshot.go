package models

import "time"

// RegistrySnapshot is the full serializable state of a request registry.
// Stores must round-trip every field, including note history and timestamps.
type RegistrySnapshot struct {
	SavedAt  time.Time `json:"saved_at"`
	Requests []Request `json:"requests"`
}

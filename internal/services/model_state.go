package services

// ModelState tags the outcome of a build step so callers branch on state instead of
// probing for nil fields.
type ModelState string

const (
	StateReady       ModelState = "ready"
	StateNotReady    ModelState = "not_ready"
	StateDegraded    ModelState = "degraded"
	StateUnavailable ModelState = "unavailable"
)

package domain

// Notification is an in-app notification row. Writes are best effort
// everywhere: a failed insert is logged and never fails the caller.
type Notification struct {
	UserID string
	Kind   string // onboarding_completed|purchase_started
	Title  string
	Body   string
}

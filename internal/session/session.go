// Package session stores the per-user dialogue step and the fields gathered during checkout.
package session

// Step identifies a finite-state-machine step of the conversation.
type Step string

const (
	// MainMenu is the initial step; no dialogue is in progress.
	MainMenu Step = "main_menu"
	// BrowsingCategory means the category keyboard is shown.
	BrowsingCategory Step = "browsing_category"
	AwaitingName     Step = "awaiting_name"
	AwaitingPhone    Step = "awaiting_phone"
	AwaitingAddress  Step = "awaiting_address"
	// AwaitingInstructions accepts free text; "none" means no instructions.
	AwaitingInstructions  Step = "awaiting_instructions"
	AwaitingPaymentMethod Step = "awaiting_payment_method"
	// AwaitingCancelReason is only entered by the operator.
	AwaitingCancelReason Step = "awaiting_cancel_reason"
)

// InCheckout reports whether the step belongs to the checkout dialogue.
func (s Step) InCheckout() bool {
	switch s {
	case AwaitingName, AwaitingPhone, AwaitingAddress, AwaitingInstructions, AwaitingPaymentMethod:
		return true
	}
	return false
}

// Session is a value snapshot; callers replace it wholesale with Put.
type Session struct {
	Step           Step
	CustomerName   string
	Phone          string
	Address        string
	Instructions   string
	PaymentMethod  string
	PendingOrderID string
	Category       string
}

// Store keeps one session per user.
type Store interface {
	// Get returns the user's session or a fresh MainMenu session.
	Get(userID int64) Session
	Put(userID int64, s Session)
	// Reset drops all collected fields and returns the user to MainMenu.
	Reset(userID int64)
}

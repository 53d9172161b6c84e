package models

import (
	"time"
)

type CartStatus string

const (
	CartStatusOpen      CartStatus = "OPEN"
	CartStatusCompleted CartStatus = "COMPLETED"
	CartStatusCancelled CartStatus = "CANCELLED"
)

func (s CartStatus) IsOpen() bool {
	return s == CartStatusOpen
}

type ParticipantRef struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// PaymentSummary is attached by the backend once a cart has been paid.
type PaymentSummary struct {
	Method     string    `json:"method"`
	PayerName  string    `json:"payer_name"`
	PaidAmount float64   `json:"paid_amount"`
	PaidAt     time.Time `json:"paid_at"`
}

type SharedCart struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Status      CartStatus      `json:"status"`
	Owner       ParticipantRef  `json:"owner"`
	ExpiresAt   time.Time       `json:"expires_at"`
	TotalItems  int             `json:"total_items"`
	TotalAmount float64         `json:"total_amount"`
	Payment     *PaymentSummary `json:"payment,omitempty"`
}

type SharedCartItem struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	AddedBy     string  `json:"added_by"`
}

// WithSubtotal returns a copy of the item whose subtotal matches unit price times quantity.
func (i SharedCartItem) WithSubtotal() SharedCartItem {
	i.Subtotal = i.UnitPrice * float64(i.Quantity)

	return i
}

type Participant struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsOwner  bool   `json:"is_owner"`
}

// SharedCartDetail is the authoritative view returned by the remote backend.
type SharedCartDetail struct {
	Cart         SharedCart       `json:"cart"`
	Items        []SharedCartItem `json:"items"`
	Participants []Participant    `json:"participants"`
}

type SharedCartSummary struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Status      CartStatus `json:"status"`
	OwnerName   string     `json:"owner_name"`
	TotalItems  int        `json:"total_items"`
	TotalAmount float64    `json:"total_amount"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

type PendingInvitation struct {
	Identifier     string `json:"identifier"`
	ResolvedUserID *int64 `json:"resolved_user_id"`
}

// ResolvedInvitation is an identifier the backend mapped to a user id at invite time.
type ResolvedInvitation struct {
	Identifier string `json:"identifier"`
	UserID     int64  `json:"user_id"`
}

// ItemSnapshot is the durable cache entry for a cart's line items.
type ItemSnapshot struct {
	CartID     int64            `json:"cart_id"`
	Items      []SharedCartItem `json:"items"`
	CapturedAt time.Time        `json:"captured_at"`
}

// MergedCartDetail is the reconciled, UI-ready view of a shared cart.
type MergedCartDetail struct {
	Cart               SharedCart          `json:"cart"`
	Items              []SharedCartItem    `json:"items"`
	Participants       []Participant       `json:"participants"`
	PendingInvitations []PendingInvitation `json:"pending_invitations"`
	ItemsRestored      bool                `json:"items_restored"`
}

type InviteRequest struct {
	Identifiers []string `json:"identifiers" validate:"required,min=1,max=20,dive,required,max=254"`
}

type InviteResponse struct {
	PendingInvitations []PendingInvitation `json:"pending_invitations"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type CheckoutState string

const (
	CheckoutStateIdle         CheckoutState = "IDLE"
	CheckoutStateSnapshotting CheckoutState = "SNAPSHOTTING"
	CheckoutStateSubmitting   CheckoutState = "SUBMITTING"
	CheckoutStateSucceeded    CheckoutState = "SUCCEEDED"
	CheckoutStateFailed       CheckoutState = "FAILED"
)

// InFlight reports whether an attempt in this state still owns the cart.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutStateSnapshotting || s == CheckoutStateSubmitting
}

type CheckoutResult struct {
	RedirectURL      string        `json:"redirect_url,omitempty"`
	RedirectRequired bool          `json:"redirect_required"`
	State            CheckoutState `json:"state"`
	SnapshotSource   string        `json:"snapshot_source,omitempty"`
}

// CartUpdateResponse acknowledges a close or cancel. Cart is nil when the backend
// accepted the change but the follow-up read failed; Refreshed tells the two apart.
type CartUpdateResponse struct {
	CartID    int64             `json:"cart_id"`
	Action    string            `json:"action"`
	Refreshed bool              `json:"refreshed"`
	Cart      *MergedCartDetail `json:"cart,omitempty"`
}

type CheckoutStatusResponse struct {
	CartID int64         `json:"cart_id"`
	State  CheckoutState `json:"state"`
}

package storefront

import (
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
)

// Wire shapes of the storefront backend. Optional blocks are pointers and are resolved
// into the model exactly once, in toModel.

type wireUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type wirePaymentInfo struct {
	Method     string    `json:"method"`
	PayerName  string    `json:"payer_name"`
	PaidAmount float64   `json:"paid_amount"`
	PaidAt     time.Time `json:"paid_at"`
}

type wireItem struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	AddedBy      string  `json:"added_by"`
}

type wireParticipant struct {
	User    wireUser `json:"user"`
	IsOwner bool     `json:"is_owner"`
}

type wireDetail struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Status       string            `json:"status"`
	Owner        wireUser          `json:"owner"`
	ExpiresAt    time.Time         `json:"expires_at"`
	TotalItems   int               `json:"total_items"`
	TotalAmount  float64           `json:"total_amount"`
	PaymentInfo  *wirePaymentInfo  `json:"payment_info"`
	Items        []wireItem        `json:"items"`
	Participants []wireParticipant `json:"participants"`
}

type wireSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Owner       wireUser  `json:"owner"`
	ExpiresAt   time.Time `json:"expires_at"`
	TotalItems  int       `json:"total_items"`
	TotalAmount float64   `json:"total_amount"`
}

type wireInviteRequest struct {
	Identifiers []string `json:"identifiers"`
}

type wireInviteResponse struct {
	Resolved []models.ResolvedInvitation `json:"resolved"`
}

type wireCheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type wireCheckoutResponse struct {
	RedirectURL *string `json:"redirect_url"`
}

func displayName(u wireUser) string {
	if u.FullName != "" {
		return u.FullName
	}

	return u.Username
}

func (d wireDetail) toModel() models.SharedCartDetail {
	cart := models.SharedCart{
		ID:          d.ID,
		Title:       d.Title,
		Status:      models.CartStatus(d.Status),
		Owner:       models.ParticipantRef{UserID: d.Owner.ID, Name: displayName(d.Owner)},
		ExpiresAt:   d.ExpiresAt,
		TotalItems:  d.TotalItems,
		TotalAmount: d.TotalAmount,
	}

	if d.PaymentInfo != nil {
		cart.Payment = &models.PaymentSummary{
			Method:     d.PaymentInfo.Method,
			PayerName:  d.PaymentInfo.PayerName,
			PaidAmount: d.PaymentInfo.PaidAmount,
			PaidAt:     d.PaymentInfo.PaidAt,
		}
	}

	items := make([]models.SharedCartItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, models.SharedCartItem{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Thumbnail:   it.ThumbnailURL,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			AddedBy:     it.AddedBy,
		}.WithSubtotal())
	}

	participants := make([]models.Participant, 0, len(d.Participants))
	for _, p := range d.Participants {
		participants = append(participants, models.Participant{
			UserID:   p.User.ID,
			Name:     displayName(p.User),
			Username: p.User.Username,
			Email:    p.User.Email,
			IsOwner:  p.IsOwner,
		})
	}

	return models.SharedCartDetail{Cart: cart, Items: items, Participants: participants}
}

func (s wireSummary) toModel() models.SharedCartSummary {
	return models.SharedCartSummary{
		ID:          s.ID,
		Title:       s.Title,
		Status:      models.CartStatus(s.Status),
		OwnerName:   displayName(s.Owner),
		TotalItems:  s.TotalItems,
		TotalAmount: s.TotalAmount,
		ExpiresAt:   s.ExpiresAt,
	}
}

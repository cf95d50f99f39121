package response

import (
	"time"

	"local-services/internal/data/entity"
	"local-services/pkg/payment"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	ServiceID    string               `json:"service_id"`
	ProviderID   string               `json:"provider_id"`
	ServiceName  string               `json:"service_name,omitempty"`
	UserName     string               `json:"user_name,omitempty"`
	ProviderName string               `json:"provider_name,omitempty"`
	Date         string               `json:"date"`
	Time         string               `json:"time"`
	Notes        *string              `json:"notes,omitempty"`
	Price        float64              `json:"price"`
	Location     string               `json:"location"`
	OrderID      string               `json:"order_id"`

	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
}

type OrderResponse struct {
	ID       string  `json:"id"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"key_id"`
}

type CreateBookingResponse struct {
	Booking BookingResponse `json:"booking"`
	Order   OrderResponse   `json:"order"`
}

type AvailableSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// BulkItemResult reports per-item outcome after the up-front permission gate
// passed for every item.
type BulkItemResult struct {
	BookingID string `json:"booking_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type BulkStatusResponse struct {
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
	Results []BulkItemResult `json:"results"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            booking.ID.String(),
		UserID:        booking.UserID.String(),
		ServiceID:     booking.ServiceID.String(),
		ProviderID:    booking.ProviderID.String(),
		Date:          booking.Date.Format("2006-01-02"),
		Time:          booking.Time,
		Notes:         booking.Notes,
		Price:         booking.Price,
		Location:      booking.Location,
		OrderID:       booking.RazorpayOrderID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		CreatedAt:     booking.CreatedAt,
	}
}

func BookingDetailToResponse(detail *entity.BookingDetail) BookingResponse {
	resp := BookingToResponse(&detail.Booking)
	resp.ServiceName = detail.ServiceName
	resp.UserName = detail.UserName
	resp.ProviderName = detail.ProviderName
	return resp
}

func OrderToResponse(order *payment.Order, keyID string) OrderResponse {
	return OrderResponse{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    keyID,
	}
}

func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		BookingID: review.BookingID.String(),
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

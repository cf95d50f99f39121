package request

type CreateBookingRequest struct {
	ServiceID string  `json:"service_id" validate:"required,uuid4"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"time" validate:"required,datetime=15:04"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type UpdateBookingStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type BulkBookingStatusRequest struct {
	BookingIDs []string `json:"booking_ids" validate:"required,min=1,dive,uuid4"`
	Status     string   `json:"status" validate:"required"`
	Notes      *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

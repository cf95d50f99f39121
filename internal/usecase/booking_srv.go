package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/dto/response"
	"local-services/internal/notify"
	"local-services/pkg/payment"
	"local-services/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusTransitions is the table of legal provider/admin-driven moves.
// payment_pending -> pending is owned by VerifyPayment, cancellation and
// review have dedicated operations with their own actor rules.
var statusTransitions = map[entity.BookingStatus][]entity.BookingStatus{
	entity.BookingStatusPending:    {entity.BookingStatusApproved, entity.BookingStatusRejected},
	entity.BookingStatusApproved:   {entity.BookingStatusScheduled},
	entity.BookingStatusScheduled:  {entity.BookingStatusInProgress},
	entity.BookingStatusInProgress: {entity.BookingStatusCompleted},
}

var statusEmailKinds = map[entity.BookingStatus]notify.EmailKind{
	entity.BookingStatusApproved:   notify.EmailBookingApproved,
	entity.BookingStatusRejected:   notify.EmailBookingRejected,
	entity.BookingStatusScheduled:  notify.EmailBookingScheduled,
	entity.BookingStatusInProgress: notify.EmailBookingInProgress,
	entity.BookingStatusCompleted:  notify.EmailBookingCompleted,
}

const (
	slotDayStartHour = 9
	slotDayEndHour   = 17
)

type BookingService interface {
	CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	VerifyPayment(ctx context.Context, req *request.VerifyPaymentRequest) (*response.BookingResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	BulkUpdateStatus(ctx context.Context, actor entity.Actor, req *request.BulkBookingStatusRequest) (*response.BulkStatusResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
	AddReview(ctx context.Context, actor entity.Actor, bookingID string, req *request.AddReviewRequest) (*response.ReviewResponse, error)

	GetUserBookings(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetProviderBookings(ctx context.Context, actor entity.Actor) ([]response.BookingResponse, error)
	GetBookingByID(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
	AvailableSlots(ctx context.Context, serviceID, date string) (*response.AvailableSlotsResponse, error)
}

type bookingService struct {
	repo       *repository.Repository
	dispatcher notify.Notifier
	gateway    payment.Gateway
	verifier   *payment.Verifier
	config     *utils.Config
	log        *zap.Logger
}

func NewBookingService(repo *repository.Repository, dispatcher notify.Notifier, gateway payment.Gateway, verifier *payment.Verifier, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:       repo,
		dispatcher: dispatcher,
		gateway:    gateway,
		verifier:   verifier,
		config:     config,
		log:        log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if actor.Role != entity.RoleUser {
		return nil, fmt.Errorf("access denied: only users can create bookings")
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service ID format %s: %w", req.ServiceID, err)
	}

	service, err := s.repo.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s not found", req.ServiceID)
	}
	if service.Status != entity.ApprovalApproved {
		return nil, fmt.Errorf("service %s is not open for booking", req.ServiceID)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %s: %w", req.Date, err)
	}
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("cannot book a past date")
	}

	// Gateway order first: if the gateway is down, no booking is created.
	amountPaise := int64(math.Round(service.Price * 100))
	order, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", utils.GenerateReceiptID())
	if err != nil {
		s.log.Error("Failed to create payment order",
			zap.Error(err),
			zap.String("service_id", req.ServiceID),
		)
		return nil, fmt.Errorf("create payment order: %w", err)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:     actor.ID,
		ServiceID:  service.ID,
		ProviderID: service.ProviderID,
		Date:       date,
		Time:       req.Time,
		Notes:      req.Notes,

		// price and location are snapshots; later edits to the service
		// must not rewrite history
		Price:    service.Price,
		Location: service.Location,

		RazorpayOrderID: order.ID,
		Status:          entity.BookingStatusPaymentPending,
		PaymentStatus:   entity.PaymentStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", order.ID),
		zap.String("user_id", actor.ID.String()),
	)

	return &response.CreateBookingResponse{
		Booking: response.BookingToResponse(booking),
		Order:   response.OrderToResponse(order, s.config.Razorpay.KeyID),
	}, nil
}

func (s *bookingService) VerifyPayment(ctx context.Context, req *request.VerifyPaymentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.repo.Booking.FindByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("order %s not found", req.RazorpayOrderID)
	}

	if !s.verifier.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		if err := s.repo.Booking.MarkPaymentFailed(ctx, req.RazorpayOrderID); err != nil {
			return nil, fmt.Errorf("record failed payment: %w", err)
		}
		s.log.Warn("Payment signature mismatch",
			zap.String("order_id", req.RazorpayOrderID),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("invalid payment signature")
	}

	if err := s.repo.Booking.MarkPaid(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, entity.BookingStatusPending); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	booking.PaymentStatus = entity.PaymentStatusPaid
	booking.Status = entity.BookingStatusPending
	booking.RazorpayPaymentID = &req.RazorpayPaymentID
	booking.RazorpaySignature = &req.RazorpaySignature

	s.log.Info("Payment verified",
		zap.String("order_id", req.RazorpayOrderID),
		zap.String("booking_id", booking.ID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor entity.Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	detail, err := s.repo.Booking.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if err := s.checkTransitionPermission(actor, &detail.Booking); err != nil {
		return nil, err
	}

	target := entity.NormalizeBookingStatus(req.Status)
	updated, err := s.applyTransition(ctx, detail, target, req.Notes)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		// rejected: record is gone, echo the last known state
		detail.Status = entity.BookingStatusRejected
		resp := response.BookingDetailToResponse(detail)
		return &resp, nil
	}

	resp := response.BookingDetailToResponse(updated)
	return &resp, nil
}

func (s *bookingService) BulkUpdateStatus(ctx context.Context, actor entity.Actor, req *request.BulkBookingStatusRequest) (*response.BulkStatusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ids := make([]uuid.UUID, len(req.BookingIDs))
	for i, raw := range req.BookingIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid booking ID format %s: %w", raw, err)
		}
		ids[i] = id
	}

	bookings, err := s.repo.Booking.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	if len(bookings) != len(ids) {
		return nil, fmt.Errorf("booking not found: %d of %d ids missing", len(ids)-len(bookings), len(ids))
	}

	// Permission is all-or-nothing: one forbidden item fails the batch
	// before anything mutates.
	for _, booking := range bookings {
		if err := s.checkTransitionPermission(actor, booking); err != nil {
			return nil, err
		}
	}

	target := entity.NormalizeBookingStatus(req.Status)
	result := &response.BulkStatusResponse{}

	for _, booking := range bookings {
		detail, err := s.repo.Booking.FindDetailByID(ctx, booking.ID)
		if err == nil && detail == nil {
			err = fmt.Errorf("booking %s not found", booking.ID.String())
		}
		if err == nil {
			_, err = s.applyTransition(ctx, detail, target, req.Notes)
		}

		item := response.BulkItemResult{BookingID: booking.ID.String(), Success: err == nil}
		if err != nil {
			item.Error = err.Error()
			result.Failed++
		} else {
			result.Updated++
		}
		result.Results = append(result.Results, item)
	}

	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if !actor.IsAdmin() && !(actor.Role == entity.RoleUser && booking.UserID == actor.ID) {
		return nil, fmt.Errorf("access denied: not your booking")
	}

	if entity.NormalizeBookingStatus(string(booking.Status)) != entity.BookingStatusPaymentPending {
		return nil, fmt.Errorf("invalid transition: only payment pending bookings can be cancelled")
	}

	if err := s.repo.Booking.UpdateStatus(ctx, id, entity.BookingStatusCancelled, nil); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	booking.Status = entity.BookingStatusCancelled

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("actor_id", actor.ID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) AddReview(ctx context.Context, actor entity.Actor, bookingID string, req *request.AddReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	if actor.Role != entity.RoleUser || booking.UserID != actor.ID {
		return nil, fmt.Errorf("access denied: not your booking")
	}

	status := entity.NormalizeBookingStatus(string(booking.Status))
	if status != entity.BookingStatusCompleted && status != entity.BookingStatusReviewed {
		return nil, fmt.Errorf("invalid transition: can only review completed bookings")
	}

	existing, err := s.repo.Review.FindByBookingAndUser(ctx, id, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("booking already reviewed")
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID: id,
		UserID:    actor.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, id, entity.BookingStatusReviewed, nil); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	// Full rescan keeps the aggregate exact even after deletes. O(reviews),
	// fine at this scale.
	rating, count, err := s.repo.Review.ServiceRatingStats(ctx, booking.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("recompute service rating: %w", err)
	}
	if err := s.repo.Service.UpdateRating(ctx, booking.ServiceID, rating, count); err != nil {
		return nil, fmt.Errorf("persist service rating: %w", err)
	}

	s.log.Info("Review added",
		zap.String("booking_id", bookingID),
		zap.Int("rating", req.Rating),
		zap.Float64("service_rating", rating),
		zap.Int64("review_count", count),
	)

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	details, err := s.repo.Booking.FindDetailByUserID(ctx, actor.ID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	items := make([]response.BookingResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, response.BookingDetailToResponse(detail))
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	return response.NewPaginatedResponse(items, page, req.Limit(), total), nil
}

func (s *bookingService) GetProviderBookings(ctx context.Context, actor entity.Actor) ([]response.BookingResponse, error) {
	details, err := s.repo.Booking.FindDetailByProviderID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	items := make([]response.BookingResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, response.BookingDetailToResponse(detail))
	}

	return items, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	detail, err := s.repo.Booking.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}

	owner := detail.UserID == actor.ID || detail.ProviderID == actor.ID
	if !actor.IsAdmin() && !owner {
		return nil, fmt.Errorf("access denied: not your booking")
	}

	resp := response.BookingDetailToResponse(detail)
	return &resp, nil
}

func (s *bookingService) AvailableSlots(ctx context.Context, serviceID, date string) (*response.AvailableSlotsResponse, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service ID format %s: %w", serviceID, err)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %s: %w", date, err)
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s not found", serviceID)
	}

	booked, err := s.repo.Booking.BookedTimes(ctx, id, day)
	if err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	slots := []string{}
	for hour := slotDayStartHour; hour < slotDayEndHour; hour++ {
		slot := fmt.Sprintf("%02d:00", hour)
		if !taken[slot] {
			slots = append(slots, slot)
		}
	}

	return &response.AvailableSlotsResponse{Date: date, Slots: slots}, nil
}

// checkTransitionPermission gates provider-side transitions: an admin, or the
// provider the booking belongs to.
func (s *bookingService) checkTransitionPermission(actor entity.Actor, booking *entity.Booking) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == entity.RoleProvider && booking.ProviderID == actor.ID {
		return nil
	}
	return fmt.Errorf("access denied: booking %s does not belong to you", booking.ID.String())
}

// applyTransition runs one validated status change. The persisted mutation
// always happens before any notification is enqueued. Rejection is terminal:
// the email is enqueued, then the record is hard-deleted regardless of the
// enqueue outcome, and nil is returned for the detail.
func (s *bookingService) applyTransition(ctx context.Context, detail *entity.BookingDetail, target entity.BookingStatus, notes *string) (*entity.BookingDetail, error) {
	current := entity.NormalizeBookingStatus(string(detail.Status))

	legal := false
	for _, allowed := range statusTransitions[current] {
		if allowed == target {
			legal = true
			break
		}
	}
	if !legal {
		return nil, fmt.Errorf("invalid transition from %s to %s", current, target)
	}

	if target == entity.BookingStatusRejected {
		s.dispatcher.EnqueueEmail(notify.EmailBookingRejected, s.emailPayload(detail, notes))

		if err := s.repo.Booking.Delete(ctx, detail.ID); err != nil {
			return nil, fmt.Errorf("delete rejected booking: %w", err)
		}

		s.log.Info("Booking rejected and removed", zap.String("booking_id", detail.ID.String()))
		return nil, nil
	}

	if err := s.repo.Booking.UpdateStatus(ctx, detail.ID, target, notes); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	detail.Status = target
	if notes != nil {
		detail.Notes = notes
	}
	detail.UpdatedAt = time.Now()

	if kind, ok := statusEmailKinds[target]; ok {
		s.dispatcher.EnqueueEmail(kind, s.emailPayload(detail, notes))
	}
	s.dispatcher.EnqueueNotification(notify.BookingStatusUpdated, response.BookingDetailToResponse(detail))

	s.log.Info("Booking status updated",
		zap.String("booking_id", detail.ID.String()),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
	)

	return detail, nil
}

func (s *bookingService) emailPayload(detail *entity.BookingDetail, notes *string) notify.EmailPayload {
	payload := notify.EmailPayload{
		Email:       detail.UserEmail,
		Name:        detail.UserName,
		ServiceName: detail.ServiceName,
		Date:        detail.Date.Format("2006-01-02"),
		Time:        detail.Time,
		BookingID:   detail.ID.String(),
	}
	if notes != nil {
		payload.Notes = *notes
	}
	return payload
}

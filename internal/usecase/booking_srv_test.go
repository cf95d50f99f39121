package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"
	"time"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/notify"
	"local-services/pkg/payment"
	"local-services/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test_key_secret"

// journal records persistence and notification side effects in call order so
// tests can assert that the database write lands before anything is enqueued.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) index(entry string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, e := range j.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

type recordedEmail struct {
	Kind    notify.EmailKind
	Payload notify.EmailPayload
}

type fakeNotifier struct {
	journal *journal
	emails  []recordedEmail
	events  []string
}

func (f *fakeNotifier) EnqueueEmail(kind notify.EmailKind, payload notify.EmailPayload) {
	f.journal.add("enqueue:email:" + string(kind))
	f.emails = append(f.emails, recordedEmail{Kind: kind, Payload: payload})
}

func (f *fakeNotifier) EnqueueNotification(event string, payload any) {
	f.journal.add("enqueue:event:" + event)
	f.events = append(f.events, event)
}

type fakeGateway struct {
	orders []*payment.Order
	err    error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	order := &payment.Order{
		ID:       fmt.Sprintf("order_%d", len(f.orders)+1),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	f.orders = append(f.orders, order)
	return order, nil
}

type fakeBookingRepo struct {
	journal *journal
	details map[uuid.UUID]*entity.BookingDetail
	deleted []uuid.UUID
}

func newFakeBookingRepo(j *journal) *fakeBookingRepo {
	return &fakeBookingRepo{journal: j, details: map[uuid.UUID]*entity.BookingDetail{}}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	f.journal.add("persist:create")
	f.details[booking.ID] = &entity.BookingDetail{Booking: *booking}
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, nil
	}
	booking := detail.Booking
	return &booking, nil
}

func (f *fakeBookingRepo) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	for _, detail := range f.details {
		if detail.RazorpayOrderID == orderID {
			booking := detail.Booking
			return &booking, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, id := range ids {
		if detail, ok := f.details[id]; ok {
			booking := detail.Booking
			out = append(out, &booking)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.journal.add("persist:delete")
	if _, ok := f.details[id]; !ok {
		return fmt.Errorf("booking not found")
	}
	delete(f.details, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBookingRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.details)), nil
}

func (f *fakeBookingRepo) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, nil
	}
	copied := *detail
	return &copied, nil
}

func (f *fakeBookingRepo) FindDetailByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.BookingDetail, error) {
	var out []*entity.BookingDetail
	for _, detail := range f.details {
		if detail.UserID == userID {
			copied := *detail
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, detail := range f.details {
		if detail.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) FindDetailByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.BookingDetail, error) {
	var out []*entity.BookingDetail
	for _, detail := range f.details {
		if detail.ProviderID == providerID {
			copied := *detail
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) error {
	f.journal.add("persist:update_status:" + string(status))
	detail, ok := f.details[id]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	detail.Status = status
	if notes != nil {
		detail.Notes = notes
	}
	return nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, orderID, paymentID, signature string, status entity.BookingStatus) error {
	f.journal.add("persist:mark_paid")
	for _, detail := range f.details {
		if detail.RazorpayOrderID == orderID {
			detail.PaymentStatus = entity.PaymentStatusPaid
			detail.Status = status
			detail.RazorpayPaymentID = &paymentID
			detail.RazorpaySignature = &signature
			return nil
		}
	}
	return fmt.Errorf("booking not found")
}

func (f *fakeBookingRepo) MarkPaymentFailed(ctx context.Context, orderID string) error {
	f.journal.add("persist:mark_payment_failed")
	for _, detail := range f.details {
		if detail.RazorpayOrderID == orderID {
			detail.PaymentStatus = entity.PaymentStatusFailed
			return nil
		}
	}
	return fmt.Errorf("booking not found")
}

func (f *fakeBookingRepo) BookedTimes(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]string, error) {
	var out []string
	for _, detail := range f.details {
		if detail.ServiceID == serviceID && detail.Date.Equal(date) &&
			detail.Status != entity.BookingStatusCancelled && detail.Status != entity.BookingStatusRejected {
			out = append(out, detail.Time)
		}
	}
	return out, nil
}

type ratingUpdate struct {
	ServiceID uuid.UUID
	Rating    float64
	Count     int64
}

type fakeServiceRepo struct {
	services      map[uuid.UUID]*entity.Service
	ratingUpdates []ratingUpdate
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[uuid.UUID]*entity.Service{}}
}

func (f *fakeServiceRepo) Create(ctx context.Context, service *entity.Service) error {
	f.services[service.ID] = service
	return nil
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return f.services[id], nil
}

func (f *fakeServiceRepo) FindApproved(ctx context.Context, filter repository.ServiceFilter) ([]*entity.Service, error) {
	return nil, nil
}

func (f *fakeServiceRepo) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Service, error) {
	return nil, nil
}

func (f *fakeServiceRepo) FindPending(ctx context.Context) ([]*entity.Service, error) {
	return nil, nil
}

func (f *fakeServiceRepo) Categories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeServiceRepo) Update(ctx context.Context, service *entity.Service) error {
	f.services[service.ID] = service
	return nil
}

func (f *fakeServiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, notes *string) error {
	if service, ok := f.services[id]; ok {
		service.Status = status
		service.AdminNotes = notes
	}
	return nil
}

func (f *fakeServiceRepo) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int64) error {
	f.ratingUpdates = append(f.ratingUpdates, ratingUpdate{ServiceID: id, Rating: rating, Count: reviewCount})
	if service, ok := f.services[id]; ok {
		service.Rating = rating
		service.ReviewCount = reviewCount
	}
	return nil
}

func (f *fakeServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.services, id)
	return nil
}

func (f *fakeServiceRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.services)), nil
}

type fakeReviewRepo struct {
	reviews []*entity.Review
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewRepo) FindByBookingAndUser(ctx context.Context, bookingID, userID uuid.UUID) (*entity.Review, error) {
	for _, review := range f.reviews {
		if review.BookingID == bookingID && review.UserID == userID {
			return review, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) FindByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	return f.reviews, nil
}

func (f *fakeReviewRepo) ServiceRatingStats(ctx context.Context, serviceID uuid.UUID) (float64, int64, error) {
	if len(f.reviews) == 0 {
		return 0, 0, nil
	}
	var sum int
	for _, review := range f.reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(f.reviews)), int64(len(f.reviews)), nil
}

type bookingFixture struct {
	svc      BookingService
	bookings *fakeBookingRepo
	services *fakeServiceRepo
	reviews  *fakeReviewRepo
	notifier *fakeNotifier
	gateway  *fakeGateway
	journal  *journal
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	j := &journal{}
	f := &bookingFixture{
		bookings: newFakeBookingRepo(j),
		services: newFakeServiceRepo(),
		reviews:  &fakeReviewRepo{},
		notifier: &fakeNotifier{journal: j},
		gateway:  &fakeGateway{},
		journal:  j,
	}

	repo := &repository.Repository{
		Service: f.services,
		Booking: f.bookings,
		Review:  f.reviews,
	}
	config := &utils.Config{
		Razorpay: utils.RazorpayConfig{KeyID: "rzp_test_abc", KeySecret: testSecret},
	}

	f.svc = NewBookingService(repo, f.notifier, f.gateway, payment.NewVerifier(testSecret), config, zap.NewNop())
	return f
}

func (f *bookingFixture) seedService(providerID uuid.UUID, status entity.ApprovalStatus) *entity.Service {
	service := &entity.Service{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		ProviderID: providerID,
		Name:       "Deep Cleaning",
		Category:   "cleaning",
		Price:      1500,
		Location:   "Pune",
		Status:     status,
	}
	f.services.services[service.ID] = service
	return service
}

func (f *bookingFixture) seedBooking(userID, providerID uuid.UUID, status entity.BookingStatus) *entity.BookingDetail {
	detail := &entity.BookingDetail{
		Booking: entity.Booking{
			Base:            entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			UserID:          userID,
			ServiceID:       uuid.New(),
			ProviderID:      providerID,
			Date:            time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			Time:            "10:00",
			Price:           1500,
			Location:        "Pune",
			RazorpayOrderID: "order_" + uuid.NewString()[:8],
			Status:          status,
			PaymentStatus:   entity.PaymentStatusPaid,
		},
		ServiceName: "Deep Cleaning",
		UserName:    "Asha",
		UserEmail:   "asha@example.com",
	}
	f.bookings.details[detail.ID] = detail
	return detail
}

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateBookingStartsInPaymentPending(t *testing.T) {
	f := newBookingFixture(t)
	provider := uuid.New()
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	service := f.seedService(provider, entity.ApprovalApproved)

	resp, err := f.svc.CreateBooking(context.Background(), user, &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPaymentPending, resp.Booking.Status)
	assert.Equal(t, entity.PaymentStatusPending, resp.Booking.PaymentStatus)
	assert.Equal(t, service.Price, resp.Booking.Price)
	assert.Equal(t, service.Location, resp.Booking.Location)
	assert.Equal(t, "rzp_test_abc", resp.Order.KeyID)

	require.Len(t, f.gateway.orders, 1)
	assert.Equal(t, int64(150000), f.gateway.orders[0].Amount)
	assert.Equal(t, "INR", f.gateway.orders[0].Currency)
	assert.Equal(t, f.gateway.orders[0].ID, resp.Booking.OrderID)
}

func TestCreateBookingRoundsFractionalPrice(t *testing.T) {
	f := newBookingFixture(t)
	service := f.seedService(uuid.New(), entity.ApprovalApproved)
	service.Price = 1499.99

	_, err := f.svc.CreateBooking(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleUser}, &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	})
	require.NoError(t, err)

	require.Len(t, f.gateway.orders, 1)
	assert.Equal(t, int64(149999), f.gateway.orders[0].Amount)
}

func TestCreateBookingOnlyForUsers(t *testing.T) {
	f := newBookingFixture(t)
	service := f.seedService(uuid.New(), entity.ApprovalApproved)
	req := &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	}

	for _, role := range []entity.Role{entity.RoleProvider, entity.RoleAdmin} {
		_, err := f.svc.CreateBooking(context.Background(), entity.Actor{ID: uuid.New(), Role: role}, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	}
	assert.Empty(t, f.gateway.orders)
}

func TestCreateBookingRequiresApprovedService(t *testing.T) {
	f := newBookingFixture(t)
	service := f.seedService(uuid.New(), entity.ApprovalPending)

	_, err := f.svc.CreateBooking(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleUser}, &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open for booking")
	assert.Empty(t, f.gateway.orders)
}

func TestCreateBookingFailsWhenGatewayDown(t *testing.T) {
	f := newBookingFixture(t)
	f.gateway.err = fmt.Errorf("gateway unavailable")
	service := f.seedService(uuid.New(), entity.ApprovalApproved)

	_, err := f.svc.CreateBooking(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleUser}, &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	})
	require.Error(t, err)
	assert.Empty(t, f.bookings.details, "no booking row without a gateway order")
}

func TestVerifyPaymentValidSignature(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPaymentPending)
	detail.PaymentStatus = entity.PaymentStatusPending
	paymentID := "pay_123"

	resp, err := f.svc.VerifyPayment(context.Background(), &request.VerifyPaymentRequest{
		RazorpayOrderID:   detail.RazorpayOrderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signPayment(detail.RazorpayOrderID, paymentID),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)

	stored := f.bookings.details[detail.ID]
	assert.Equal(t, entity.BookingStatusPending, stored.Status)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
	require.NotNil(t, stored.RazorpayPaymentID)
	assert.Equal(t, paymentID, *stored.RazorpayPaymentID)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPaymentPending)

	_, err := f.svc.VerifyPayment(context.Background(), &request.VerifyPaymentRequest{
		RazorpayOrderID:   detail.RazorpayOrderID,
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: "deadbeef",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payment signature")

	stored := f.bookings.details[detail.ID]
	assert.Equal(t, entity.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, entity.BookingStatusPaymentPending, stored.Status, "status unchanged on failed verification")
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.VerifyPayment(context.Background(), &request.VerifyPaymentRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: signPayment("order_missing", "pay_123"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdateStatusTransitionTable(t *testing.T) {
	allStatuses := []entity.BookingStatus{
		entity.BookingStatusPaymentPending,
		entity.BookingStatusPending,
		entity.BookingStatusApproved,
		entity.BookingStatusScheduled,
		entity.BookingStatusInProgress,
		entity.BookingStatusCompleted,
		entity.BookingStatusReviewed,
		entity.BookingStatusCancelled,
	}
	targets := []entity.BookingStatus{
		entity.BookingStatusApproved,
		entity.BookingStatusRejected,
		entity.BookingStatusScheduled,
		entity.BookingStatusInProgress,
		entity.BookingStatusCompleted,
	}
	legal := map[entity.BookingStatus]map[entity.BookingStatus]bool{
		entity.BookingStatusPending:    {entity.BookingStatusApproved: true, entity.BookingStatusRejected: true},
		entity.BookingStatusApproved:   {entity.BookingStatusScheduled: true},
		entity.BookingStatusScheduled:  {entity.BookingStatusInProgress: true},
		entity.BookingStatusInProgress: {entity.BookingStatusCompleted: true},
	}

	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}

	for _, from := range allStatuses {
		for _, to := range targets {
			name := fmt.Sprintf("%s_to_%s", from, to)
			t.Run(name, func(t *testing.T) {
				f := newBookingFixture(t)
				detail := f.seedBooking(uuid.New(), uuid.New(), from)

				_, err := f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
					Status: string(to),
				})

				if legal[from][to] {
					require.NoError(t, err)
				} else {
					require.Error(t, err)
					assert.Contains(t, err.Error(), "invalid transition")
				}
			})
		}
	}
}

func TestUpdateStatusNormalizesMixedCase(t *testing.T) {
	f := newBookingFixture(t)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatus("Pending"))

	resp, err := f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: "  Approved ",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusApproved, resp.Status)
}

func TestUpdateStatusPersistsBeforeEnqueue(t *testing.T) {
	f := newBookingFixture(t)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)

	_, err := f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusApproved),
	})
	require.NoError(t, err)

	persistIdx := f.journal.index("persist:update_status:approved")
	emailIdx := f.journal.index("enqueue:email:" + string(notify.EmailBookingApproved))
	eventIdx := f.journal.index("enqueue:event:" + notify.BookingStatusUpdated)

	require.GreaterOrEqual(t, persistIdx, 0)
	require.GreaterOrEqual(t, emailIdx, 0)
	require.GreaterOrEqual(t, eventIdx, 0)
	assert.Less(t, persistIdx, emailIdx, "status must be persisted before the email is enqueued")
	assert.Less(t, persistIdx, eventIdx, "status must be persisted before the broadcast is enqueued")

	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, "asha@example.com", f.notifier.emails[0].Payload.Email)
	assert.Equal(t, "Deep Cleaning", f.notifier.emails[0].Payload.ServiceName)
}

func TestUpdateStatusPersistsNotes(t *testing.T) {
	f := newBookingFixture(t)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)
	notes := "please bring a ladder"

	resp, err := f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusApproved),
		Notes:  &notes,
	})
	require.NoError(t, err)

	stored := f.bookings.details[detail.ID]
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, notes, *resp.Notes)

	// a later transition without notes keeps the earlier ones
	_, err = f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusScheduled),
	})
	require.NoError(t, err)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
}

func TestRejectDeletesBookingAndEnqueuesEmail(t *testing.T) {
	f := newBookingFixture(t)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)
	notes := "slot unavailable"

	resp, err := f.svc.UpdateStatus(context.Background(), admin, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusRejected),
		Notes:  &notes,
	})
	require.NoError(t, err)

	// record is gone, response echoes the terminal state
	assert.Equal(t, entity.BookingStatusRejected, resp.Status)
	assert.NotContains(t, f.bookings.details, detail.ID)
	assert.Equal(t, []uuid.UUID{detail.ID}, f.bookings.deleted)

	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, notify.EmailBookingRejected, f.notifier.emails[0].Kind)
	assert.Equal(t, notes, f.notifier.emails[0].Payload.Notes)
	assert.Empty(t, f.notifier.events, "no realtime broadcast for a deleted booking")
}

func TestUpdateStatusDeniedForForeignProvider(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)
	stranger := entity.Actor{ID: uuid.New(), Role: entity.RoleProvider}

	_, err := f.svc.UpdateStatus(context.Background(), stranger, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusApproved),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, entity.BookingStatusPending, f.bookings.details[detail.ID].Status)
}

func TestUpdateStatusAllowedForOwningProvider(t *testing.T) {
	f := newBookingFixture(t)
	provider := entity.Actor{ID: uuid.New(), Role: entity.RoleProvider}
	detail := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusPending)

	resp, err := f.svc.UpdateStatus(context.Background(), provider, detail.ID.String(), &request.UpdateBookingStatusRequest{
		Status: string(entity.BookingStatusApproved),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusApproved, resp.Status)
}

func TestBulkUpdatePermissionGateIsAllOrNothing(t *testing.T) {
	f := newBookingFixture(t)
	provider := entity.Actor{ID: uuid.New(), Role: entity.RoleProvider}
	mine := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusPending)
	foreign := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)

	_, err := f.svc.BulkUpdateStatus(context.Background(), provider, &request.BulkBookingStatusRequest{
		BookingIDs: []string{mine.ID.String(), foreign.ID.String()},
		Status:     string(entity.BookingStatusApproved),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	// one forbidden item fails the batch before anything mutates
	assert.Equal(t, entity.BookingStatusPending, f.bookings.details[mine.ID].Status)
	assert.Equal(t, entity.BookingStatusPending, f.bookings.details[foreign.ID].Status)
	assert.Empty(t, f.notifier.emails)
}

func TestBulkUpdateMissingIDFailsBatch(t *testing.T) {
	f := newBookingFixture(t)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPending)

	_, err := f.svc.BulkUpdateStatus(context.Background(), admin, &request.BulkBookingStatusRequest{
		BookingIDs: []string{detail.ID.String(), uuid.NewString()},
		Status:     string(entity.BookingStatusApproved),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking not found")
	assert.Equal(t, entity.BookingStatusPending, f.bookings.details[detail.ID].Status)
}

func TestBulkUpdateReportsPerItemOutcome(t *testing.T) {
	f := newBookingFixture(t)
	provider := entity.Actor{ID: uuid.New(), Role: entity.RoleProvider}
	ready := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusPending)
	wrongState := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusCompleted)

	resp, err := f.svc.BulkUpdateStatus(context.Background(), provider, &request.BulkBookingStatusRequest{
		BookingIDs: []string{ready.ID.String(), wrongState.ID.String()},
		Status:     string(entity.BookingStatusApproved),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Contains(t, resp.Results[1].Error, "invalid transition")

	assert.Equal(t, entity.BookingStatusApproved, f.bookings.details[ready.ID].Status)
	assert.Equal(t, entity.BookingStatusCompleted, f.bookings.details[wrongState.ID].Status)
}

func TestBulkRejectDeletesEachBookingIndependently(t *testing.T) {
	f := newBookingFixture(t)
	provider := entity.Actor{ID: uuid.New(), Role: entity.RoleProvider}
	first := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusPending)
	second := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusPending)
	stuck := f.seedBooking(uuid.New(), provider.ID, entity.BookingStatusCompleted)

	resp, err := f.svc.BulkUpdateStatus(context.Background(), provider, &request.BulkBookingStatusRequest{
		BookingIDs: []string{first.ID.String(), second.ID.String(), stuck.ID.String()},
		Status:     string(entity.BookingStatusRejected),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 1, resp.Failed)

	// each rejectable item is hard-deleted with its own email; the item in a
	// wrong state fails alone without blocking the others
	assert.NotContains(t, f.bookings.details, first.ID)
	assert.NotContains(t, f.bookings.details, second.ID)
	assert.Contains(t, f.bookings.details, stuck.ID)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, f.bookings.deleted)

	require.Len(t, f.notifier.emails, 2)
	for _, email := range f.notifier.emails {
		assert.Equal(t, notify.EmailBookingRejected, email.Kind)
	}
}

func TestCancelBookingOnlyFromPaymentPending(t *testing.T) {
	f := newBookingFixture(t)
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}

	paymentPending := f.seedBooking(user.ID, uuid.New(), entity.BookingStatusPaymentPending)
	resp, err := f.svc.CancelBooking(context.Background(), user, paymentPending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)

	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusApproved,
		entity.BookingStatusCompleted,
	} {
		detail := f.seedBooking(user.ID, uuid.New(), status)
		_, err := f.svc.CancelBooking(context.Background(), user, detail.ID.String())
		require.Error(t, err, "cancel from %s must fail", status)
		assert.Contains(t, err.Error(), "invalid transition")
	}
}

func TestCancelBookingDeniedForOtherUser(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPaymentPending)
	stranger := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}

	_, err := f.svc.CancelBooking(context.Background(), stranger, detail.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestCancelBookingAllowedForAdmin(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusPaymentPending)
	admin := entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}

	resp, err := f.svc.CancelBooking(context.Background(), admin, detail.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)
}

func TestAddReviewRecomputesServiceRating(t *testing.T) {
	f := newBookingFixture(t)
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	detail := f.seedBooking(user.ID, uuid.New(), entity.BookingStatusCompleted)

	// an earlier review by someone else on another booking of the same service
	f.reviews.reviews = append(f.reviews.reviews, &entity.Review{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		BookingID:  uuid.New(),
		UserID:     uuid.New(),
		Rating:     4,
	})

	resp, err := f.svc.AddReview(context.Background(), user, detail.ID.String(), &request.AddReviewRequest{
		Rating:  5,
		Comment: "spotless",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)

	assert.Equal(t, entity.BookingStatusReviewed, f.bookings.details[detail.ID].Status)

	require.Len(t, f.services.ratingUpdates, 1)
	update := f.services.ratingUpdates[0]
	assert.Equal(t, detail.ServiceID, update.ServiceID)
	assert.InDelta(t, 4.5, update.Rating, 1e-9, "rating is the exact mean over all reviews")
	assert.Equal(t, int64(2), update.Count)
}

func TestAddReviewRejectsDuplicate(t *testing.T) {
	f := newBookingFixture(t)
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	detail := f.seedBooking(user.ID, uuid.New(), entity.BookingStatusCompleted)

	_, err := f.svc.AddReview(context.Background(), user, detail.ID.String(), &request.AddReviewRequest{Rating: 5})
	require.NoError(t, err)

	_, err = f.svc.AddReview(context.Background(), user, detail.ID.String(), &request.AddReviewRequest{Rating: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already reviewed")
	assert.Len(t, f.reviews.reviews, 1)
}

func TestAddReviewRequiresCompletedBooking(t *testing.T) {
	f := newBookingFixture(t)
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	detail := f.seedBooking(user.ID, uuid.New(), entity.BookingStatusApproved)

	_, err := f.svc.AddReview(context.Background(), user, detail.ID.String(), &request.AddReviewRequest{Rating: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestAddReviewDeniedForNonOwner(t *testing.T) {
	f := newBookingFixture(t)
	detail := f.seedBooking(uuid.New(), uuid.New(), entity.BookingStatusCompleted)
	stranger := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}

	_, err := f.svc.AddReview(context.Background(), stranger, detail.ID.String(), &request.AddReviewRequest{Rating: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestAvailableSlotsExcludesBookedTimes(t *testing.T) {
	f := newBookingFixture(t)
	provider := uuid.New()
	service := f.seedService(provider, entity.ApprovalApproved)

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	for _, slot := range []string{"10:00", "14:00"} {
		detail := f.seedBooking(uuid.New(), provider, entity.BookingStatusApproved)
		detail.ServiceID = service.ID
		detail.Date = day
		detail.Time = slot
	}

	// cancelled bookings release their slot
	released := f.seedBooking(uuid.New(), provider, entity.BookingStatusCancelled)
	released.ServiceID = service.ID
	released.Date = day
	released.Time = "11:00"

	resp, err := f.svc.AvailableSlots(context.Background(), service.ID.String(), "2026-09-10")
	require.NoError(t, err)

	assert.NotContains(t, resp.Slots, "10:00")
	assert.NotContains(t, resp.Slots, "14:00")
	assert.Contains(t, resp.Slots, "11:00")
	assert.Contains(t, resp.Slots, "09:00")
	assert.Contains(t, resp.Slots, "16:00")
	assert.NotContains(t, resp.Slots, "17:00", "working day ends before 17:00")
	assert.Len(t, resp.Slots, 6)
}

func TestGetBookingByIDOwnership(t *testing.T) {
	f := newBookingFixture(t)
	userID := uuid.New()
	providerID := uuid.New()
	detail := f.seedBooking(userID, providerID, entity.BookingStatusPending)

	for _, actor := range []entity.Actor{
		{ID: userID, Role: entity.RoleUser},
		{ID: providerID, Role: entity.RoleProvider},
		{ID: uuid.New(), Role: entity.RoleAdmin},
	} {
		resp, err := f.svc.GetBookingByID(context.Background(), actor, detail.ID.String())
		require.NoError(t, err)
		assert.Equal(t, detail.ID.String(), resp.ID)
	}

	_, err := f.svc.GetBookingByID(context.Background(), entity.Actor{ID: uuid.New(), Role: entity.RoleUser}, detail.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

// TestBookingLifecycle walks one booking through the whole pipeline: checkout,
// payment verification, the provider-driven status ladder, then the review.
func TestBookingLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	providerID := uuid.New()
	user := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	provider := entity.Actor{ID: providerID, Role: entity.RoleProvider}
	service := f.seedService(providerID, entity.ApprovalApproved)

	created, err := f.svc.CreateBooking(context.Background(), user, &request.CreateBookingRequest{
		ServiceID: service.ID.String(),
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:      "10:00",
	})
	require.NoError(t, err)
	bookingID := created.Booking.ID
	orderID := created.Booking.OrderID

	paymentID := "pay_lifecycle"
	verified, err := f.svc.VerifyPayment(context.Background(), &request.VerifyPaymentRequest{
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: signPayment(orderID, paymentID),
	})
	require.NoError(t, err)
	require.Equal(t, entity.BookingStatusPending, verified.Status)

	for _, next := range []entity.BookingStatus{
		entity.BookingStatusApproved,
		entity.BookingStatusScheduled,
		entity.BookingStatusInProgress,
		entity.BookingStatusCompleted,
	} {
		resp, err := f.svc.UpdateStatus(context.Background(), provider, bookingID, &request.UpdateBookingStatusRequest{
			Status: string(next),
		})
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, resp.Status)
	}

	review, err := f.svc.AddReview(context.Background(), user, bookingID, &request.AddReviewRequest{
		Rating:  5,
		Comment: "great work",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	id, err := uuid.Parse(bookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusReviewed, f.bookings.details[id].Status)

	// four status emails plus four realtime broadcasts along the ladder
	assert.Len(t, f.notifier.emails, 4)
	assert.Len(t, f.notifier.events, 4)
	assert.InDelta(t, 5.0, f.services.services[service.ID].Rating, 1e-9)
	assert.Equal(t, int64(1), f.services.services[service.ID].ReviewCount)
}

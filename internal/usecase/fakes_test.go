package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/internal/queue"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
)

// In-memory repository fakes. Mutations take the store lock so the
// concurrency tests exercise the same guarantees the SQL layer gives.

type fakeStore struct {
	mu        sync.Mutex
	tours     map[uuid.UUID]*entity.Tour
	schedules map[uuid.UUID]*entity.Schedule
	bookings  map[uuid.UUID]*entity.Booking
	reviews   map[uuid.UUID]*entity.Review
	discounts map[string]*entity.Discount
	users     map[uuid.UUID]*entity.User
	sessions  map[uuid.UUID]*entity.Session
	otps      map[uuid.UUID]*entity.OTP
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tours:     make(map[uuid.UUID]*entity.Tour),
		schedules: make(map[uuid.UUID]*entity.Schedule),
		bookings:  make(map[uuid.UUID]*entity.Booking),
		reviews:   make(map[uuid.UUID]*entity.Review),
		discounts: make(map[string]*entity.Discount),
		users:     make(map[uuid.UUID]*entity.User),
		sessions:  make(map[uuid.UUID]*entity.Session),
		otps:      make(map[uuid.UUID]*entity.OTP),
	}
}

func (s *fakeStore) repo() *repository.Repository {
	return &repository.Repository{
		Tour:     &fakeTourRepo{s: s},
		Schedule: &fakeScheduleRepo{s: s},
		Booking:  &fakeBookingRepo{s: s},
		Review:   &fakeReviewRepo{s: s},
		Discount: &fakeDiscountRepo{s: s},
		User:     &fakeUserRepo{s: s},
		Session:  &fakeSessionRepo{s: s},
		OTP:      &fakeOTPRepo{s: s},
	}
}

// ---------- tours ----------

type fakeTourRepo struct{ s *fakeStore }

func (r *fakeTourRepo) Create(ctx context.Context, tour *entity.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tours[tour.ID] = tour
	return nil
}

func (r *fakeTourRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tour, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tours[id], nil
}

func (r *fakeTourRepo) FindAll(ctx context.Context, offset, limit int) ([]*entity.Tour, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Tour
	for _, t := range r.s.tours {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTourRepo) FindFeatured(ctx context.Context, limit int) ([]*entity.Tour, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Tour
	for _, t := range r.s.tours {
		if t.Featured {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTourRepo) CountAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.tours)), nil
}

func (r *fakeTourRepo) Update(ctx context.Context, tour *entity.Tour) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tours[tour.ID] = tour
	return nil
}

func (r *fakeTourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tours, id)
	return nil
}

func (r *fakeTourRepo) AddImage(ctx context.Context, tourID uuid.UUID, filename string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tours[tourID]; ok {
		t.Images = append(t.Images, filename)
	}
	return nil
}

func (r *fakeTourRepo) UpdateRatingStats(ctx context.Context, tourID uuid.UUID, average float64, count int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tours[tourID]; ok {
		t.RatingAverage = average
		t.RatingCount = int(count)
	}
	return nil
}

// ---------- schedules ----------

type fakeScheduleRepo struct{ s *fakeStore }

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *entity.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.schedules[schedule.ID] = schedule
	return nil
}

func (r *fakeScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sch, ok := r.s.schedules[id]; ok {
		copied := *sch
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindByTourID(ctx context.Context, tourID uuid.UUID) ([]*entity.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Schedule
	for _, sch := range r.s.schedules {
		if sch.TourID == tourID {
			out = append(out, sch)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, schedule *entity.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.schedules[schedule.ID] = schedule
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.schedules, id)
	return nil
}

// ReserveSeats mirrors the conditional SQL update: claim only when
// enough seats remain, atomically.
func (r *fakeScheduleRepo) ReserveSeats(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sch, ok := r.s.schedules[id]
	if !ok || sch.AvailableSeats < seats {
		return false, nil
	}
	sch.AvailableSeats -= seats
	return true, nil
}

func (r *fakeScheduleRepo) RestoreSeats(ctx context.Context, id uuid.UUID, seats int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sch, ok := r.s.schedules[id]; ok {
		sch.AvailableSeats += seats
	}
	return nil
}

// ---------- bookings ----------

type fakeBookingRepo struct{ s *fakeStore }

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *booking
	r.s.bookings[booking.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.OrderID == orderID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.CustomerID != nil && *b.CustomerID == customerID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	bookings, _ := r.FindByCustomerID(ctx, customerID, 0, 0)
	return int64(len(bookings)), nil
}

func (r *fakeBookingRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) CountAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.bookings)), nil
}

// TransitionPayment mirrors the guarded UPDATE: applied only when the
// current status is a valid predecessor, with the forced tour status in
// the same step.
func (r *fakeBookingRepo) TransitionPayment(ctx context.Context, id uuid.UUID, to entity.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return false, nil
	}
	if !entity.CanTransitionPayment(b.PaymentStatus, to) {
		return false, nil
	}
	b.PaymentStatus = to
	b.TourStatus = entity.TourStatusFor(to, b.TourStatus)
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) UpdateTourStatus(ctx context.Context, id uuid.UUID, status entity.TourStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[id]; ok {
		b.TourStatus = status
	}
	return nil
}

func (r *fakeBookingRepo) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		stillOpen := b.PaymentStatus == entity.PaymentStatusPending || b.PaymentStatus == entity.PaymentStatusProcessing
		if stillOpen && b.CreatedAt.Before(cutoff) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) HasPaidBooking(ctx context.Context, customerID, tourID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.CustomerID != nil && *b.CustomerID == customerID &&
			b.TourID == tourID && b.PaymentStatus == entity.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ---------- reviews ----------

type fakeReviewRepo struct{ s *fakeStore }

func (r *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.reviews[id], nil
}

func (r *fakeReviewRepo) FindByTourID(ctx context.Context, tourID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Review
	for _, rev := range r.s.reviews {
		if rev.TourID == tourID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) FindByUserAndTour(ctx context.Context, userID, tourID uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rev := range r.s.reviews {
		if rev.UserID == userID && rev.TourID == tourID {
			return rev, nil
		}
	}
	return nil, nil
}

func (r *fakeReviewRepo) CountByTourID(ctx context.Context, tourID uuid.UUID) (int64, error) {
	reviews, _ := r.FindByTourID(ctx, tourID, 0, 0)
	return int64(len(reviews)), nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reviews, id)
	return nil
}

func (r *fakeReviewRepo) GetTourReviewStats(ctx context.Context, tourID uuid.UUID) (float64, int64, error) {
	reviews, _ := r.FindByTourID(ctx, tourID, 0, 0)
	if len(reviews) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, rev := range reviews {
		sum += rev.Rating
	}
	return float64(sum) / float64(len(reviews)), int64(len(reviews)), nil
}

// ---------- discounts ----------

type fakeDiscountRepo struct{ s *fakeStore }

func (r *fakeDiscountRepo) FindByCode(ctx context.Context, code string) (*entity.Discount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.discounts[strings.ToUpper(code)], nil
}

func (r *fakeDiscountRepo) FindActiveByCode(ctx context.Context, code string, at time.Time) (*entity.Discount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.discounts[strings.ToUpper(code)]
	if !ok || !d.ValidAt(at) {
		return nil, nil
	}
	return d, nil
}

// ---------- users ----------

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ---------- sessions ----------

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.Token] = session
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, ok := r.s.sessions[parsed]
	if !ok || sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}
	return sess, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil
	}
	if sess, ok := r.s.sessions[parsed]; ok {
		now := time.Now()
		sess.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			sess.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(ctx context.Context) error {
	return nil
}

// ---------- otps ----------

type fakeOTPRepo struct{ s *fakeStore }

func (r *fakeOTPRepo) Create(ctx context.Context, otp *entity.OTP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.otps[otp.ID] = otp
	return nil
}

func (r *fakeOTPRepo) FindValidOTP(ctx context.Context, email, otpCode string, otpType entity.OTPType) (*entity.OTP, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, otp := range r.s.otps {
		if strings.EqualFold(otp.Email, email) && otp.OTPCode == otpCode &&
			otp.OTPType == otpType && !otp.IsUsed && time.Now().Before(otp.ExpiresAt) {
			return otp, nil
		}
	}
	return nil, nil
}

func (r *fakeOTPRepo) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if otp, ok := r.s.otps[otpID]; ok {
		otp.IsUsed = true
	}
	return nil
}

// ---------- mailer ----------

type fakeMailer struct {
	mu   sync.Mutex
	otps []string
}

func (m *fakeMailer) SendOTP(to, otp string, expiryMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps = append(m.otps, otp)
	return nil
}

func (m *fakeMailer) SendBookingConfirmation(to, customerName, orderID, tourName, departureDate string, totalPrice float64) error {
	return nil
}

func (m *fakeMailer) lastOTP() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.otps) == 0 {
		return ""
	}
	return m.otps[len(m.otps)-1]
}

// ---------- gateways, publisher ----------

type fakeStripeGateway struct {
	mu       sync.Mutex
	sessions int
	fail     bool
}

func (g *fakeStripeGateway) CreateCheckoutSession(orderID, tourName string, amount float64) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", "", fmt.Errorf("gateway unavailable")
	}
	g.sessions++
	return "cs_test_" + orderID, "https://checkout.test/" + orderID, nil
}

func (g *fakeStripeGateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	return nil, fmt.Errorf("not used in tests")
}

type fakeMoMoGateway struct {
	fail bool
}

func (g *fakeMoMoGateway) CreatePayment(ctx context.Context, orderID, orderInfo string, amount int64, redirectURL string) (string, error) {
	if g.fail {
		return "", fmt.Errorf("gateway unavailable")
	}
	return "https://momo.test/" + orderID, nil
}

func (g *fakeMoMoGateway) VerifyIPNSignature(callback gateway.MoMoIPNRequest) bool {
	return callback.Signature == "valid"
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (p *fakePublisher) PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) countFor(orderID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.OrderID == orderID {
			n++
		}
	}
	return n
}

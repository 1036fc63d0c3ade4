package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"railway-booking/internal/data/entity"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/ledger"

	"github.com/google/uuid"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
	holds    map[uuid.UUID]entity.SeatHold
	payments []*entity.Payment

	createHook    func(ctx context.Context) error
	transitionErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*entity.Booking),
		holds:    make(map[uuid.UUID]entity.SeatHold),
	}
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.Passengers = make([]*entity.Passenger, len(b.Passengers))
	for i, p := range b.Passengers {
		pc := *p
		c.Passengers[i] = &pc
	}
	return &c
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	if r.createHook != nil {
		if err := r.createHook(ctx); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = cloneBooking(booking)
	if booking.Status.HoldsInventory() {
		r.holds[booking.ID] = entity.SeatHold{
			BookingID:   booking.ID,
			TrainID:     booking.TrainID,
			JourneyDate: booking.JourneyDate,
			Seats:       booking.NumPassengers,
		}
	}
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })

	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (r *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, b := range r.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) CommittedByKey(ctx context.Context) ([]entity.CommittedSeats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sums := make(map[ledger.Key]*entity.CommittedSeats)
	for _, h := range r.holds {
		key := ledger.NewKey(h.TrainID, h.JourneyDate)
		if sums[key] == nil {
			sums[key] = &entity.CommittedSeats{TrainID: h.TrainID, JourneyDate: h.JourneyDate}
		}
		sums[key].Seats += h.Seats
	}

	counts := make([]entity.CommittedSeats, 0, len(sums))
	for _, c := range sums {
		counts = append(counts, *c)
	}
	return counts, nil
}

func (r *fakeBookingRepo) ReleaseHold(ctx context.Context, bookingID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holds[bookingID]
	if !ok {
		return 0, nil
	}
	delete(r.holds, bookingID)
	return h.Seats, nil
}

func (r *fakeBookingRepo) RestoreHold(ctx context.Context, hold *entity.SeatHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.holds[hold.BookingID]; !ok {
		r.holds[hold.BookingID] = *hold
	}
	return nil
}

func (r *fakeBookingRepo) hasHold(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.holds[id]
	return ok
}

func (r *fakeBookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	if r.transitionErr != nil {
		return false, r.transitionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (r *fakeBookingRepo) MarkPaid(ctx context.Context, payment *entity.Payment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[payment.BookingID]
	if !ok || !b.CanPay() {
		return false, nil
	}
	b.PaymentStatus = entity.PaymentStatusPaid
	r.payments = append(r.payments, payment)
	return true, nil
}

func (r *fakeBookingRepo) countStatus(status entity.BookingStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, b := range r.bookings {
		if b.Status == status {
			n++
		}
	}
	return n
}

type fakeTrainRepo struct {
	mu     sync.Mutex
	trains map[uuid.UUID]*entity.Train
	err    error
}

func newFakeTrainRepo(trains ...*entity.Train) *fakeTrainRepo {
	r := &fakeTrainRepo{trains: make(map[uuid.UUID]*entity.Train)}
	for _, t := range trains {
		r.trains[t.ID] = t
	}
	return r
}

func (r *fakeTrainRepo) Create(ctx context.Context, train *entity.Train) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trains[train.ID] = train
	return nil
}

func (r *fakeTrainRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Train, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trains[id], nil
}

func (r *fakeTrainRepo) FindAll(ctx context.Context) ([]*entity.Train, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Train, 0, len(r.trains))
	for _, t := range r.trains {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *fakeTrainRepo) Search(ctx context.Context, source, destination string) ([]*entity.Train, error) {
	all, _ := r.FindAll(ctx)
	var out []*entity.Train
	for _, t := range all {
		if containsFold(t.Source, source) && containsFold(t.Destination, destination) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTrainRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.trains)), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email }), nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) find(match func(*entity.User) bool) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return u
		}
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token] = session
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	now := s.CreatedAt
	s.RevokedAt = &now
	return nil
}

func (r *fakeSessionRepo) RevokeAllExcept(ctx context.Context, userID, keep uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, s := range r.sessions {
		if s.UserID != userID || token == keep || s.RevokedAt != nil {
			continue
		}
		now := s.CreatedAt
		s.RevokedAt = &now
		n++
	}
	return n, nil
}

// flakyLedger wraps a real ledger and can be told to fail releases
type flakyLedger struct {
	ledger.Ledger
	mu         sync.Mutex
	releaseErr error
	releases   int
}

func (l *flakyLedger) Release(ctx context.Context, key ledger.Key, count int) error {
	l.mu.Lock()
	err := l.releaseErr
	l.releases++
	l.mu.Unlock()

	if err != nil {
		return err
	}
	return l.Ledger.Release(ctx, key, count)
}

func (l *flakyLedger) Seed(ctx context.Context, key ledger.Key, committed int) error {
	return l.Ledger.(ledger.Seeder).Seed(ctx, key, committed)
}

func (l *flakyLedger) failReleases(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseErr = err
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

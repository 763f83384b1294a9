package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/calendar"
	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	"github.com/leavedesk/service-booking/internal/domain/history"
	"github.com/leavedesk/service-booking/internal/domain/member"
	"github.com/leavedesk/service-booking/pkg/domain"
	"github.com/leavedesk/service-booking/pkg/kafka"
)

var errDB = errors.New("database is unavailable")

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	readErr  error
	saves    int
	updates  int
}

func newFakeBookingRepo(seed ...*bookingDomain.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
	for _, b := range seed {
		r.bookings[b.ID()] = b
	}
	return r
}

func (r *fakeBookingRepo) filter(keep func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date().Before(out[j].Date()) })
	return out
}

func (r *fakeBookingRepo) FindByDate(_ context.Context, d calendar.Date) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	return r.filter(func(b *bookingDomain.Booking) bool { return b.Covers(d) }), nil
}

func (r *fakeBookingRepo) FindByUserAndMonth(_ context.Context, userID string, year int, month time.Month) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	return r.filter(func(b *bookingDomain.Booking) bool { return b.UserID() == userID && b.StartsIn(year, month) }), nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	// Return a copy so unsaved changes do not leak into the store.
	return bookingDomain.ReconstructBooking(b.ID(), b.Date(), b.EndDate(), b.UserID(), b.UserName(), b.Category(), b.Reason(), b.Version(), b.CreatedAt(), b.UpdatedAt()), nil
}

func (r *fakeBookingRepo) FindInRange(_ context.Context, start, end calendar.Date) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(b *bookingDomain.Booking) bool { return b.Overlaps(start, end) }), nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID string) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(b *bookingDomain.Booking) bool { return b.UserID() == userID }), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(func(*bookingDomain.Booking) bool { return true })
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (r *fakeBookingRepo) CountByCategory(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Category())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another request")
	}
	r.updates++
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	delete(r.bookings, id)
	return nil
}

// fakeHistoryRepo is an in-memory HistoryRepository.
type fakeHistoryRepo struct {
	mu        sync.Mutex
	entries   []*history.Entry
	appendErr error
}

func (r *fakeHistoryRepo) Append(_ context.Context, e *history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeHistoryRepo) FindByBookingID(_ context.Context, id uuid.UUID) ([]*history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*history.Entry
	for _, e := range r.entries {
		if e.BookingID() == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListRecent(_ context.Context, limit int) ([]*history.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*history.Entry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

// fakeMemberRepo is an in-memory MemberRepository.
type fakeMemberRepo struct {
	members map[string]*member.Member
	findErr error
}

func newFakeMemberRepo(seed ...*member.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: make(map[string]*member.Member)}
	for _, m := range seed {
		r.members[m.LineUserID()] = m
	}
	return r
}

func (r *fakeMemberRepo) FindByLineUserID(_ context.Context, id string) (*member.Member, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	m, ok := r.members[id]
	if !ok {
		return nil, domain.NewNotFoundError("Member", id)
	}
	return m, nil
}

func (r *fakeMemberRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.members[id]
	return ok, nil
}

func (r *fakeMemberRepo) Save(_ context.Context, m *member.Member) error {
	r.members[m.LineUserID()] = m
	return nil
}

func (r *fakeMemberRepo) Update(_ context.Context, m *member.Member) error {
	r.members[m.LineUserID()] = m
	return nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error {
	args := m.Called(ctx, topic, ce)
	return args.Error(0)
}

// recordingLock records the dates it was asked to lock.
type recordingLock struct {
	mu       sync.Mutex
	acquired [][]calendar.Date
	released int
	err      error
}

func (l *recordingLock) Acquire(_ context.Context, dates []calendar.Date) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, dates)
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

// testEnv wires a BookingService over fakes with "today" fixed at 2025-01-15 in Bangkok.
type testEnv struct {
	service   *BookingService
	bookings  *fakeBookingRepo
	history   *fakeHistoryRepo
	members   *fakeMemberRepo
	publisher *mockPublisher
	lock      *recordingLock
}

func newTestEnv(t *testing.T, seed ...*bookingDomain.Booking) *testEnv {
	t.Helper()
	cal, err := calendar.Load(calendar.DefaultTimezone)
	require.NoError(t, err)
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, cal.Location())
	cal = cal.WithClock(func() time.Time { return now })

	env := &testEnv{
		bookings:  newFakeBookingRepo(seed...),
		history:   &fakeHistoryRepo{},
		members:   newFakeMemberRepo(),
		publisher: &mockPublisher{},
		lock:      &recordingLock{},
	}
	logger := zap.NewNop()
	env.service = NewBookingService(
		env.bookings,
		env.members,
		bookingDomain.NewValidator(env.bookings, cal),
		cal,
		env.lock,
		NewAuditLogger(env.history, logger),
		env.publisher,
		logger,
	)
	return env
}

func seedBooking(userID, start, end string, category bookingDomain.Category) *bookingDomain.Booking {
	var endDate *calendar.Date
	if end != "" {
		d := calendar.MustParse(end)
		endDate = &d
	}
	now := time.Now().UTC()
	return bookingDomain.ReconstructBooking(uuid.New(), calendar.MustParse(start), endDate, userID, "name-"+userID, category, "", 1, now, now)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(ce kafka.CloudEvent) bool { return ce.Type == eventType })
}

func ptr(s string) *string { return &s }

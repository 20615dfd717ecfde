package disputes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/notifications"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/uploads"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/cache"
)

// mockRepo keeps cases in memory and hands apply callbacks a dry-run
// gorm.DB so the side-effect SQL builds without a database.
type mockRepo struct {
	mu       sync.Mutex
	tx       *gorm.DB
	booking  *bookings.Booking
	cases    map[uuid.UUID]*DisputeCase
	messages map[uuid.UUID][]DisputeMessage
	evidence map[uuid.UUID][]DisputeEvidence
	seq      int64
}

func newMockRepo(t *testing.T) *mockRepo {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return &mockRepo{
		tx:       db,
		cases:    make(map[uuid.UUID]*DisputeCase),
		messages: make(map[uuid.UUID][]DisputeMessage),
		evidence: make(map[uuid.UUID][]DisputeEvidence),
	}
}

func (m *mockRepo) Create(ctx context.Context, dispute *DisputeCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dispute.ID == uuid.Nil {
		dispute.ID = uuid.New()
	}
	dispute.CreatedAt = time.Now()
	m.cases[dispute.ID] = dispute
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*DisputeCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrDisputeNotFound
	}
	copied := *c
	copied.Messages = append([]DisputeMessage(nil), m.messages[id]...)
	copied.Evidence = append([]DisputeEvidence(nil), m.evidence[id]...)
	if m.booking != nil && m.booking.ID == c.BookingID {
		copied.Booking = m.booking
	}
	return &copied, nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]DisputeCase, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DisputeCase
	for _, c := range m.cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.BookingID != nil && c.BookingID != *filter.BookingID {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepo) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cases {
		if c.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) AppendMessage(ctx context.Context, message *DisputeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	message.ID = uuid.New()
	message.Seq = m.seq
	message.CreatedAt = time.Now()
	m.messages[message.DisputeID] = append(m.messages[message.DisputeID], *message)
	return nil
}

func (m *mockRepo) AddEvidence(ctx context.Context, evidence *DisputeEvidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	evidence.ID = uuid.New()
	evidence.Seq = m.seq
	evidence.CreatedAt = time.Now()
	m.evidence[evidence.DisputeID] = append(m.evidence[evidence.DisputeID], *evidence)
	return nil
}

func (m *mockRepo) GetEvidenceByKey(ctx context.Context, storageKey string) (*DisputeEvidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for disputeID := range m.evidence {
		for i := range m.evidence[disputeID] {
			if m.evidence[disputeID][i].StorageKey == storageKey {
				e := m.evidence[disputeID][i]
				return &e, nil
			}
		}
	}
	return nil, ErrEvidenceNotFound
}

func (m *mockRepo) UpdateEvidenceAV(ctx context.Context, storageKey string, status AVStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for disputeID := range m.evidence {
		for i := range m.evidence[disputeID] {
			if m.evidence[disputeID][i].StorageKey == storageKey {
				m.evidence[disputeID][i].AVStatus = status
				return nil
			}
		}
	}
	return ErrEvidenceNotFound
}

func (m *mockRepo) TransitionStatus(ctx context.Context, id uuid.UUID, expected, next Status, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrDisputeNotFound
	}
	if c.Status != expected {
		return nil, ErrStaleTransition
	}
	if err := ValidateTransition(expected, next); err != nil {
		return nil, err
	}
	if apply != nil {
		if err := apply(m.tx.Session(&gorm.Session{NewDB: true}), c); err != nil {
			return nil, err
		}
	}
	c.Status = next
	return c, nil
}

func (m *mockRepo) UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrDisputeNotFound
	}
	if err := apply(m.tx.Session(&gorm.Session{NewDB: true}), c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *mockRepo) ListExpiredRebuttals(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DisputeCase
	for _, c := range m.cases {
		if c.Status == StatusAwaitingRebuttal && c.RebuttalDueAt != nil && c.RebuttalDueAt.Before(now) &&
			c.RebuttalReceivedAt == nil && !c.AutoRebuttalTimeout {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) ListExpiredEvidenceRequests(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DisputeCase
	for _, c := range m.cases {
		if c.Status == StatusIntakeMissingEvidence && c.EvidenceDueAt != nil && c.EvidenceDueAt.Before(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type mockBookingRepo struct {
	booking *bookings.Booking
}

func (m *mockBookingRepo) CreateWithAvailabilityCheck(ctx context.Context, booking *bookings.Booking) error {
	return errors.New("not implemented")
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	if m.booking == nil || m.booking.ID != id {
		return nil, bookings.ErrBookingNotFound
	}
	return m.booking, nil
}

func (m *mockBookingRepo) ListForUser(ctx context.Context, userID uuid.UUID, query bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (m *mockBookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, expected, next bookings.Status, mutate func(tx *gorm.DB, b *bookings.Booking) error) (*bookings.Booking, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *bookings.Booking) error {
	return errors.New("not implemented")
}

type mockUserRepo struct {
	users   map[uuid.UUID]*users.User
	flagged []uuid.UUID
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, users.ErrUserNotFound
}

func (m *mockUserRepo) FlagSuspicious(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	m.flagged = append(m.flagged, id)
	return nil
}

type mockPayments struct {
	applied []payments.ResolutionEffects
	failErr error
}

func (m *mockPayments) RecordBookingPayment(ctx context.Context, tx *gorm.DB, bookingID, payerID uuid.UUID, totalCents, depositCents int64) (*payments.Payment, *payments.DepositHold, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockPayments) ApplyResolution(ctx context.Context, tx *gorm.DB, effects payments.ResolutionEffects) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.applied = append(m.applied, effects)
	return nil
}

func (m *mockPayments) ReleaseDeposit(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	return nil
}

func (m *mockPayments) GetLedger(ctx context.Context, bookingID uuid.UUID) (*payments.LedgerResponse, error) {
	return nil, errors.New("not implemented")
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error            { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (noopCache) Exists(ctx context.Context, key string) bool             { return false }
func (noopCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	_, err := fetcher()
	return err
}
func (noopCache) Ping(ctx context.Context) error { return nil }

type fixture struct {
	service  Service
	repo     *mockRepo
	payments *mockPayments
	userRepo *mockUserRepo
	booking  *bookings.Booking
	renterID uuid.UUID
	ownerID  uuid.UUID
	operator uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	renterID := uuid.New()
	ownerID := uuid.New()
	listingID := uuid.New()

	booking := &bookings.Booking{
		ID:               uuid.New(),
		ListingID:        listingID,
		RenterID:         renterID,
		OwnerID:          ownerID,
		Status:           bookings.StatusPaid,
		TotalCents:       12000,
		DepositHoldCents: 10000,
		Listing: &listings.Listing{
			ID:    listingID,
			Title: "Makita cordless drill",
		},
	}

	userRepo := &mockUserRepo{users: map[uuid.UUID]*users.User{
		renterID: {ID: renterID, FirstName: "Rhea", Email: "rhea@example.com"},
		ownerID:  {ID: ownerID, FirstName: "Owen", Email: "owen@example.com"},
	}}

	cfg := &config.Config{
		Disputes: config.DisputeConfig{
			RebuttalWindow:      48 * time.Hour,
			EvidenceWindow:      24 * time.Hour,
			AppealWindow:        72 * time.Hour,
			ExpiryCheckInterval: time.Minute,
		},
		Storage: config.StorageConfig{
			GatewayURL:   "https://storage.prorenter.test",
			Bucket:       "prorenter-evidence",
			SigningKey:   "test-signing-key",
			URLExpiry:    15 * time.Minute,
			MaxBytes:     25 << 20,
			MaxVideoByte: 200 << 20,
		},
	}

	repo := newMockRepo(t)
	repo.booking = booking
	paymentSvc := &mockPayments{}

	svc := NewService(
		repo,
		&mockBookingRepo{booking: booking},
		userRepo,
		paymentSvc,
		uploads.NewSigner(cfg.Storage),
		notifications.NewNoopNotificationService(),
		noopCache{},
		cfg,
	)

	return &fixture{
		service:  svc,
		repo:     repo,
		payments: paymentSvc,
		userRepo: userRepo,
		booking:  booking,
		renterID: renterID,
		ownerID:  ownerID,
		operator: uuid.New(),
	}
}

func (f *fixture) openDispute(t *testing.T) *DisputeResponse {
	t.Helper()
	resp, err := f.service.CreateDispute(context.Background(), f.renterID, CreateDisputeRequest{
		BookingID:   f.booking.ID.String(),
		Category:    string(CategoryDamage),
		Description: "The chuck is cracked and the drill no longer holds a bit.",
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) caseID(t *testing.T, resp *DisputeResponse) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func TestCreateDispute(t *testing.T) {
	f := newFixture(t)
	resp := f.openDispute(t)

	assert.Equal(t, string(StatusOpen), resp.Status)
	assert.Equal(t, string(RoleRenter), resp.OpenedByRole)
	assert.Equal(t, "Makita cordless drill", resp.BookingContext.ListingTitle)
	require.NotEmpty(t, resp.Messages, "opening narration expected")
	assert.Equal(t, string(RoleSystem), resp.Messages[0].Role)
}

func TestCreateDisputeRejectsNonParty(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateDispute(context.Background(), uuid.New(), CreateDisputeRequest{
		BookingID:   f.booking.ID.String(),
		Category:    string(CategoryDamage),
		Description: "I was just walking by and saw the whole thing.",
	})
	assert.ErrorIs(t, err, ErrNotParty)
}

func TestCreateDisputeOncePerBooking(t *testing.T) {
	f := newFixture(t)
	f.openDispute(t)
	_, err := f.service.CreateDispute(context.Background(), f.ownerID, CreateDisputeRequest{
		BookingID:   f.booking.ID.String(),
		Category:    string(CategoryLateReturn),
		Description: "Returned three days late and I had another rental lined up.",
	})
	assert.ErrorIs(t, err, ErrDisputeExists)
}

func TestGetDisputeScoping(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.GetDispute(context.Background(), id, f.ownerID, false)
	assert.NoError(t, err)

	_, err = f.service.GetDispute(context.Background(), id, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotParty)

	_, err = f.service.GetDispute(context.Background(), id, uuid.New(), true)
	assert.NoError(t, err, "operators see every case")
}

func TestFilerEvidenceOpensRebuttalWindow(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.CompleteEvidence(context.Background(), id, f.renterID, CompleteEvidenceRequest{
		Key:      "disputes/" + id.String() + "/evidence/photo.jpg",
		Filename: "photo.jpg",
		Kind:     string(EvidencePhoto),
		Size:     512000,
	})
	require.NoError(t, err)

	updated, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingRebuttal, updated.Status)
	require.NotNil(t, updated.RebuttalDueAt)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *updated.RebuttalDueAt, time.Minute)
}

func TestRespondentMessageRecordsRebuttal(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	// Filer upload starts the clock, then the owner responds
	_, err := f.service.CompleteEvidence(context.Background(), id, f.renterID, CompleteEvidenceRequest{
		Key: "k1", Filename: "photo.jpg", Kind: string(EvidencePhoto), Size: 1000,
	})
	require.NoError(t, err)

	_, err = f.service.AppendMessage(context.Background(), id, f.ownerID, false, "The drill was fine when it left my garage.")
	require.NoError(t, err)

	updated, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, updated.RebuttalReceivedAt)
}

func TestPresignEvidenceScopesKeyToCase(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	resp, err := f.service.PresignEvidence(context.Background(), id, f.renterID, PresignEvidenceRequest{
		Filename:    "crack.jpg",
		ContentType: "image/jpeg",
		Size:        400000,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Key, "disputes/"+id.String()+"/evidence/")
	assert.NotEmpty(t, resp.UploadURL)
	assert.Equal(t, "pending", resp.Headers["x-prorenter-av"])
}

func TestRequestEvidenceFromFilerEntersIntake(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.RequestMoreEvidence(context.Background(), id, f.operator, RequestEvidenceRequest{
		Target:  "renter",
		Message: "Please photograph the serial plate and the cracked chuck.",
	})
	require.NoError(t, err)

	updated, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusIntakeMissingEvidence, updated.Status)
	require.NotNil(t, updated.EvidenceDueAt)
	assert.Equal(t, "renter", updated.EvidenceDueTarget)
}

func TestOpenReviewRequiresEvidence(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.OpenReview(context.Background(), id, f.operator)
	assert.ErrorIs(t, err, ErrReviewNotReady)
}

func TestResolveRejectsBadToken(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:     string(DecisionRenter),
		Reason:       "clear damage",
		ConfirmToken: "resolve",
	})
	assert.ErrorIs(t, err, ErrBadConfirmToken)
}

func TestResolveRejectsCaptureOverHold(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusUnderReview)

	_, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:             string(DecisionOwner),
		DepositCaptureAmount: "150.00", // hold is 100.00
		Reason:               "replacement cost",
		ConfirmToken:         ConfirmTokenResolve,
	})
	assert.ErrorIs(t, err, ErrCaptureExceedsHold)
}

func TestResolveRejectsNegativeAmounts(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusUnderReview)

	_, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:     string(DecisionRenter),
		RefundAmount: "-10.00",
		Reason:       "refund",
		ConfirmToken: ConfirmTokenResolve,
	})
	assert.Error(t, err)
	assert.Empty(t, f.payments.applied, "no financial effect on rejected input")
}

func TestResolveDenyMovesNoMoney(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusUnderReview)

	_, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:     string(DecisionDeny),
		RefundAmount: "5.00",
		Reason:       "no supporting evidence",
		ConfirmToken: ConfirmTokenResolve,
	})
	assert.ErrorIs(t, err, ErrDenyCarriesMoney)

	resp, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:     string(DecisionDeny),
		Reason:       "no supporting evidence",
		ConfirmToken: ConfirmTokenResolve,
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusClosedAuto), resp.Status)
	assert.Empty(t, f.payments.applied)
}

// Full happy path: complaint, operator evidence request, upload, review,
// partial resolution with a 45.00 refund and a 20.00 deposit capture.
func TestDisputeLifecyclePartialResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.RequestMoreEvidence(ctx, id, f.operator, RequestEvidenceRequest{
		Target:  "renter",
		Message: "Please upload photos of the damage.",
	})
	require.NoError(t, err)

	_, err = f.service.CompleteEvidence(ctx, id, f.renterID, CompleteEvidenceRequest{
		Key:      "disputes/" + id.String() + "/evidence/crack.jpg",
		Filename: "crack.jpg",
		Kind:     string(EvidencePhoto),
		Size:     900000,
	})
	require.NoError(t, err)

	_, err = f.service.AppendMessage(ctx, id, f.ownerID, false, "Normal wear at most; the drill is five years old.")
	require.NoError(t, err)

	_, err = f.service.OpenReview(ctx, id, f.operator)
	require.NoError(t, err)

	resp, err := f.service.Resolve(ctx, id, f.operator, ResolveDisputeRequest{
		Decision:             string(DecisionPartial),
		RefundAmount:         "45.00",
		DepositCaptureAmount: "20.00",
		Reason:               "shared responsibility for pre-existing wear",
		ConfirmToken:         ConfirmTokenResolve,
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusResolvedPartial), resp.Status)

	require.Len(t, f.payments.applied, 1)
	effects := f.payments.applied[0]
	assert.Equal(t, int64(4500), effects.RefundCents)
	assert.Equal(t, int64(2000), effects.CaptureCents)
	assert.Equal(t, f.booking.ID, effects.BookingID)

	updated, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, updated.ResolvedAt)
}

func TestResolveSideEffectFlags(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusUnderReview)

	_, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:             string(DecisionOwner),
		DepositCaptureAmount: "100.00",
		Reason:               "renter destroyed the tool",
		SuspendListing:       true,
		MarkRenterSuspicious: true,
		ConfirmToken:         ConfirmTokenResolve,
	})
	require.NoError(t, err)
	assert.Contains(t, f.userRepo.flagged, f.renterID)
	assert.NotContains(t, f.userRepo.flagged, f.ownerID)
}

func TestCloseRequiresTokenAndReason(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.Close(context.Background(), id, f.operator, CloseDisputeRequest{
		Reason:       string(CloseReasonDuplicate),
		ConfirmToken: "CLOSE ",
	})
	assert.ErrorIs(t, err, ErrBadConfirmToken)

	resp, err := f.service.Close(context.Background(), id, f.operator, CloseDisputeRequest{
		Reason:       string(CloseReasonDuplicate),
		Notes:        "Same complaint filed twice.",
		ConfirmToken: ConfirmTokenClose,
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusClosedAuto), resp.Status)
	assert.Equal(t, string(CloseReasonDuplicate), resp.CloseReason)
}

func TestAppealReopensResolvedCase(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusResolvedOwner)

	resp, err := f.service.Appeal(context.Background(), id, f.renterID, false, AppealDisputeRequest{
		Reason: "The pre-rental photos prove the crack was already there.",
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusAppealed), resp.Status)
	assert.NotNil(t, resp.AppealDueAt)

	// A fresh resolution is possible from the appealed state
	f2, err := f.service.Resolve(context.Background(), id, f.operator, ResolveDisputeRequest{
		Decision:     string(DecisionRenter),
		RefundAmount: "120.00",
		Reason:       "pre-rental photos accepted",
		ConfirmToken: ConfirmTokenResolve,
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusResolvedRenter), f2.Status)
}

func TestAppealRejectedWhenNotResolved(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.Appeal(context.Background(), id, f.renterID, false, AppealDisputeRequest{
		Reason: "I want a second look.",
	})
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestPartyMutationsRejectedAfterResolution(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))
	f.forceStatus(t, id, StatusResolvedRenter)

	_, err := f.service.AppendMessage(context.Background(), id, f.ownerID, false, "one more thing")
	assert.ErrorIs(t, err, ErrCaseReadOnly)

	_, err = f.service.PresignEvidence(context.Background(), id, f.ownerID, PresignEvidenceRequest{
		Filename: "late.jpg", Size: 1000, ContentType: "image/jpeg",
	})
	assert.ErrorIs(t, err, ErrCaseReadOnly)
}

func TestAVCallbackUpdatesEvidence(t *testing.T) {
	f := newFixture(t)
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.CompleteEvidence(context.Background(), id, f.renterID, CompleteEvidenceRequest{
		Key: "scan-me", Filename: "scan.jpg", Kind: string(EvidencePhoto), Size: 1000,
	})
	require.NoError(t, err)

	err = f.service.UpdateEvidenceAV(context.Background(), AVCallbackRequest{Key: "scan-me", Status: "infected"})
	require.NoError(t, err)

	e, err := f.repo.GetEvidenceByKey(context.Background(), "scan-me")
	require.NoError(t, err)
	assert.Equal(t, AVInfected, e.AVStatus)

	err = f.service.UpdateEvidenceAV(context.Background(), AVCallbackRequest{Key: "missing", Status: "clean"})
	assert.ErrorIs(t, err, ErrEvidenceNotFound)
}

func TestExpireRebuttalsMovesToReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.CompleteEvidence(ctx, id, f.renterID, CompleteEvidenceRequest{
		Key: "k1", Filename: "photo.jpg", Kind: string(EvidencePhoto), Size: 1000,
	})
	require.NoError(t, err)

	// Backdate the rebuttal deadline
	f.repo.mu.Lock()
	past := time.Now().Add(-time.Hour)
	f.repo.cases[id].RebuttalDueAt = &past
	f.repo.mu.Unlock()

	n, err := f.service.ExpireRebuttals(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	updated, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, updated.Status)
	assert.True(t, updated.AutoRebuttalTimeout)
	assert.NotNil(t, updated.ReviewStartedAt)

	// Second sweep finds nothing
	n, err = f.service.ExpireRebuttals(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpireEvidenceRequestsClosesCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.caseID(t, f.openDispute(t))

	_, err := f.service.RequestMoreEvidence(ctx, id, f.operator, RequestEvidenceRequest{
		Target:  "renter",
		Message: "Photos of the damage, please.",
	})
	require.NoError(t, err)

	f.repo.mu.Lock()
	past := time.Now().Add(-time.Hour)
	f.repo.cases[id].EvidenceDueAt = &past
	f.repo.mu.Unlock()

	n, err := f.service.ExpireEvidenceRequests(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	updated, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusClosedAuto, updated.Status)
	assert.Equal(t, CloseReasonNoEvidence, updated.CloseReason)
}

// forceStatus walks the case to the target through real graph edges so
// tests never hold impossible states.
func (f *fixture) forceStatus(t *testing.T, id uuid.UUID, target Status) {
	t.Helper()
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	c, ok := f.repo.cases[id]
	require.True(t, ok)
	now := time.Now()
	switch target {
	case StatusUnderReview:
		c.ReviewStartedAt = &now
	case StatusResolvedRenter, StatusResolvedOwner, StatusResolvedPartial:
		c.ResolvedAt = &now
	}
	c.Status = target
	f.repo.evidence[id] = append(f.repo.evidence[id], DisputeEvidence{
		ID: uuid.New(), DisputeID: id, UploadedBy: c.OpenedBy,
		Kind: EvidencePhoto, StorageKey: "seed-" + uuid.NewString(),
		AVStatus: AVClean, CreatedAt: now,
	})
}

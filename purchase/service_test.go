package purchase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rifa/content"
	"rifa/entity"
	"rifa/gateway"
	"rifa/occupancy"
	"rifa/purchase"
)

type eventsRecorder struct {
	lock   sync.Mutex
	events []any
}

func (r *eventsRecorder) Publish(_ context.Context, event any) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventsRecorder) Events() []any {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]any(nil), r.events...)
}

type fakeClock struct {
	lock sync.Mutex
	t    time.Time
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	service *purchase.Service
	tables  *gateway.TablesMock
	tracker *occupancy.Tracker
	store   *content.Store
	events  *eventsRecorder
	clock   *fakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	tables := &gateway.TablesMock{
		Settings: entity.Settings{
			ID:           1,
			RaffleSize:   1000,
			USDToCOPRate: 4000,
			PaymentOptions: entity.PaymentOptions{
				Nequi:   entity.PaymentOption{Enabled: true},
				Binance: entity.PaymentOption{Enabled: true},
			},
		},
		Packages: []entity.Package{
			{ID: 1, Label: "x2", Numbers: 2, PriceCOP: 20000, PriceUSD: 5},
			{ID: 2, Label: "x4", Numbers: 4, PriceCOP: 36000, PriceUSD: 9},
		},
	}

	tracker := occupancy.NewTracker(tables)
	require.NoError(t, tracker.Refresh(context.Background()))

	store := content.NewStore(tables)
	require.NoError(t, store.Load(context.Background()))

	events := &eventsRecorder{}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	return fixture{
		service: purchase.NewService(tracker, tables, store, events).WithClock(clock.Now),
		tables:  tables,
		tracker: tracker,
		store:   store,
		events:  events,
		clock:   clock,
	}
}

func buyer() entity.BuyerInfo {
	return entity.BuyerInfo{
		Name:      "Laura",
		Surname:   "Gomez",
		City:      "Medellin",
		Country:   "Colombia",
		Whatsapp:  "+573001112233",
		PrizeType: entity.PrizeTypeCifras,
	}
}

func advanceToReference(t *testing.T, f fixture, platform entity.PaymentPlatform) string {
	t.Helper()
	ctx := context.Background()

	status := f.service.Start()

	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)

	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412})
	require.NoError(t, err)
	require.Equal(t, purchase.StateCollectingBuyerInfo, status.State)

	status, err = f.service.SubmitBuyerInfo(status.ID, buyer())
	require.NoError(t, err)

	status, err = f.service.SelectPlatform(ctx, status.ID, platform)
	require.NoError(t, err)
	require.Equal(t, purchase.StateAwaitingReference, status.State)

	return status.ID
}

func TestFullPurchaseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.service.Start()
	assert.Equal(t, purchase.StateChoosingPackage, status.State)

	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateChoosingNumbers, status.State)
	assert.Equal(t, 2, status.RequiredNumbers)

	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412})
	require.NoError(t, err)
	assert.Equal(t, purchase.StateCollectingBuyerInfo, status.State)

	status, err = f.service.SubmitBuyerInfo(status.ID, buyer())
	require.NoError(t, err)
	assert.Equal(t, purchase.StateChoosingPlatform, status.State)
	assert.Len(t, status.TicketCode, 16)

	status, err = f.service.SelectPlatform(ctx, status.ID, entity.PlatformNequi)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateAwaitingReference, status.State)
	assert.Equal(t, 20000.0, status.DueAmount)
	require.NotNil(t, status.PaymentDeadline)
	assert.Equal(t, f.clock.Now().Add(purchase.PaymentWindow), *status.PaymentDeadline)

	status, err = f.service.SubmitReference(ctx, status.ID, "A1234567")
	require.NoError(t, err)
	assert.Equal(t, purchase.StateConfirmed, status.State)
	require.NotNil(t, status.Ticket)
	assert.Equal(t, []int{7, 412}, status.Ticket.Numbers)
	assert.False(t, status.Ticket.IsApproved)

	require.Len(t, f.tables.Tickets, 1)
	for _, stored := range f.tables.Tickets {
		assert.Equal(t, "A1234567", stored.Reference)
		assert.Equal(t, entity.PlatformNequi, stored.PaymentPlatform)
		assert.Equal(t, status.Ticket.TicketCode, stored.TicketCode)
	}

	assert.True(t, f.tracker.IsClaimed(7))
	assert.True(t, f.tracker.IsClaimed(412))

	events := f.events.Events()
	require.Len(t, events, 1)
	registered, ok := events[0].(entity.TicketRegistered_v1)
	require.True(t, ok)
	assert.Equal(t, status.Ticket.TicketCode, registered.Header.IdempotencyKey)
}

func TestBinanceChargesUSD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.service.Start()
	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)
	status, err = f.service.SelectNumbers(ctx, status.ID, []int{1, 2})
	require.NoError(t, err)
	status, err = f.service.SubmitBuyerInfo(status.ID, buyer())
	require.NoError(t, err)

	status, err = f.service.SelectPlatform(ctx, status.ID, entity.PlatformBinance)
	require.NoError(t, err)
	assert.Equal(t, 5.0, status.DueAmount)
}

func TestSelectNumbersSkipsClaimedAndOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tracker.MarkClaimed([]int{7})

	status := f.service.Start()
	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)

	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412, 1000, -1, 412})
	require.NoError(t, err)

	assert.Equal(t, purchase.StateChoosingNumbers, status.State)
	assert.Equal(t, []int{412}, status.Numbers)
}

func TestSelectPackageResetsNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.service.Start()
	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)
	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412})
	require.NoError(t, err)

	status, err = f.service.SelectPackage(ctx, status.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, status.Numbers)
	assert.Equal(t, purchase.StateChoosingNumbers, status.State)
	assert.Equal(t, 4, status.RequiredNumbers)
}

func TestStateGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.service.Start()

	_, err := f.service.SubmitBuyerInfo(status.ID, buyer())
	assert.ErrorIs(t, err, entity.ErrWrongState)

	_, err = f.service.SubmitReference(ctx, status.ID, "A1234567")
	assert.ErrorIs(t, err, entity.ErrWrongState)

	_, err = f.service.SelectPlatform(ctx, status.ID, entity.PlatformNequi)
	assert.ErrorIs(t, err, entity.ErrWrongState)

	_, err = f.service.Get("no-such-purchase")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestBuyerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.service.Start()
	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)
	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412})
	require.NoError(t, err)

	incomplete := buyer()
	incomplete.Whatsapp = "  "
	_, err = f.service.SubmitBuyerInfo(status.ID, incomplete)
	var validationErr *purchase.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "whatsapp", validationErr.Field)

	badPrize := buyer()
	badPrize.PrizeType = "jackpot"
	_, err = f.service.SubmitBuyerInfo(status.ID, badPrize)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "prize_type", validationErr.Field)
}

func TestDisabledPlatformRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tables.Settings.PaymentOptions.Binance.Enabled = false

	status := f.service.Start()
	status, err := f.service.SelectPackage(ctx, status.ID, 1)
	require.NoError(t, err)
	status, err = f.service.SelectNumbers(ctx, status.ID, []int{7, 412})
	require.NoError(t, err)
	status, err = f.service.SubmitBuyerInfo(status.ID, buyer())
	require.NoError(t, err)

	_, err = f.service.SelectPlatform(ctx, status.ID, entity.PlatformBinance)
	assert.ErrorIs(t, err, entity.ErrPlatformDisabled)
}

func TestBackKeepsEnteredData(t *testing.T) {
	f := newFixture(t)

	id := advanceToReference(t, f, entity.PlatformNequi)

	status, err := f.service.Back(id)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateChoosingPlatform, status.State)

	status, err = f.service.Back(id)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateCollectingBuyerInfo, status.State)
	assert.Equal(t, []int{7, 412}, status.Numbers)
	require.NotNil(t, status.Buyer)
	assert.Equal(t, "Laura", status.Buyer.Name)

	_, err = f.service.Back(id)
	assert.ErrorIs(t, err, entity.ErrWrongState)
}

func TestPaymentWindowExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := advanceToReference(t, f, entity.PlatformNequi)

	f.clock.Advance(purchase.PaymentWindow + time.Second)

	status, err := f.service.SubmitReference(ctx, id, "A1234567")
	assert.ErrorIs(t, err, entity.ErrPaymentWindowExpired)
	assert.Equal(t, purchase.StateChoosingPlatform, status.State)
	assert.Equal(t, []int{7, 412}, status.Numbers)
	assert.Empty(t, f.tables.Tickets)

	events := f.events.Events()
	require.Len(t, events, 1)
	expired, ok := events[0].(entity.PurchaseExpired_v1)
	require.True(t, ok)
	assert.Equal(t, id, expired.PurchaseID)
	assert.Equal(t, []int{7, 412}, expired.Numbers)

	// choosing the platform again opens a fresh window
	status, err = f.service.SelectPlatform(ctx, id, entity.PlatformNequi)
	require.NoError(t, err)
	status, err = f.service.SubmitReference(ctx, id, "A1234567")
	require.NoError(t, err)
	assert.Equal(t, purchase.StateConfirmed, status.State)
}

func TestReferenceValidationKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := advanceToReference(t, f, entity.PlatformNequi)

	_, err := f.service.SubmitReference(ctx, id, "I1234567")
	var validationErr *purchase.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "reference", validationErr.Field)

	status, err := f.service.Get(id)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateAwaitingReference, status.State)
}

func TestPersistFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := advanceToReference(t, f, entity.PlatformNequi)

	f.tables.InsertTicketErr = assert.AnError
	_, err := f.service.SubmitReference(ctx, id, "A1234567")
	require.Error(t, err)

	status, err := f.service.Get(id)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateAwaitingReference, status.State)

	f.tables.InsertTicketErr = nil
	status, err = f.service.SubmitReference(ctx, id, "A1234567")
	require.NoError(t, err)
	assert.Equal(t, purchase.StateConfirmed, status.State)
	assert.Len(t, f.tables.Tickets, 1)
}

// Two buyers working from the same occupancy snapshot can both claim a
// number. The persistence service accepts both rows; the conflict surfaces to
// the operators, not the buyers.
func TestConcurrentClaimOfSameNumberSucceedsTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.service.Start()
	second := f.service.Start()

	for _, id := range []string{first.ID, second.ID} {
		status, err := f.service.SelectPackage(ctx, id, 1)
		require.NoError(t, err)
		status, err = f.service.SelectNumbers(ctx, id, []int{7, 412})
		require.NoError(t, err)
		status, err = f.service.SubmitBuyerInfo(id, buyer())
		require.NoError(t, err)
		status, err = f.service.SelectPlatform(ctx, id, entity.PlatformNequi)
		require.NoError(t, err)
		_ = status
	}

	// both proceed to payment before either persists
	_, err := f.service.SubmitReference(ctx, first.ID, "A1234567")
	require.NoError(t, err)
	_, err = f.service.SubmitReference(ctx, second.ID, "B7654321")
	require.NoError(t, err)

	require.Len(t, f.tables.Tickets, 2)
	claimed := 0
	for _, stored := range f.tables.Tickets {
		assert.Contains(t, stored.Numbers, 7)
		claimed++
	}
	assert.Equal(t, 2, claimed)
}

// gatedTicketStore holds every insert until released, so a test can keep a
// submission parked inside the persistence call.
type gatedTicketStore struct {
	*gateway.TablesMock
	entered chan struct{}
	release chan struct{}
}

func (g *gatedTicketStore) InsertTicket(ctx context.Context, ticket entity.Ticket) error {
	g.entered <- struct{}{}
	<-g.release
	return g.TablesMock.InsertTicket(ctx, ticket)
}

// A purchase persists at most once: while one submission is inside the
// persistence call, a second submission for the same purchase is rejected
// instead of storing a duplicate ticket.
func TestConcurrentSubmitPersistsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gated := &gatedTicketStore{
		TablesMock: f.tables,
		entered:    make(chan struct{}, 1),
		release:    make(chan struct{}),
	}
	f.service = purchase.NewService(f.tracker, gated, f.store, f.events).WithClock(f.clock.Now)

	id := advanceToReference(t, f, entity.PlatformNequi)

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.service.SubmitReference(ctx, id, "A1234567")
		firstDone <- err
	}()
	<-gated.entered

	_, err := f.service.SubmitReference(ctx, id, "A1234567")
	assert.ErrorIs(t, err, entity.ErrWrongState)

	close(gated.release)
	require.NoError(t, <-firstDone)

	status, err := f.service.Get(id)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateConfirmed, status.State)
	assert.Len(t, f.tables.Tickets, 1)
}

func TestExpireStaleSweepsSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	awaiting := advanceToReference(t, f, entity.PlatformNequi)
	idle := f.service.Start()

	f.clock.Advance(purchase.PaymentWindow + time.Minute)
	f.service.ExpireStale(ctx)

	status, err := f.service.Get(awaiting)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateChoosingPlatform, status.State)

	events := f.events.Events()
	require.Len(t, events, 1)
	_, ok := events[0].(entity.PurchaseExpired_v1)
	assert.True(t, ok)

	// sessions untouched past the TTL are dropped entirely
	f.clock.Advance(2 * time.Hour)
	f.service.ExpireStale(ctx)

	_, err = f.service.Get(idle.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

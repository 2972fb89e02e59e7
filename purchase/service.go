package purchase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rifa/entity"
	"rifa/metrics"
	"rifa/pkg/log"
)

// PaymentWindow is how long a buyer has to submit a payment reference after
// choosing a platform.
const PaymentWindow = 300 * time.Second

// sessionTTL bounds how long an untouched purchase survives before the
// sweeper drops it.
const sessionTTL = time.Hour

type Occupancy interface {
	IsClaimed(n int) bool
	MarkClaimed(numbers []int)
}

type TicketStore interface {
	InsertTicket(ctx context.Context, ticket entity.Ticket) error
}

type Catalog interface {
	Settings(ctx context.Context) (entity.Settings, error)
	PackageByID(ctx context.Context, id int64) (entity.Package, error)
}

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

// Service owns all in-flight purchases. One service instance per process;
// purchases are not shared across processes, mirroring the per-session nature
// of the source flow.
type Service struct {
	occupancy Occupancy
	tickets   TicketStore
	catalog   Catalog
	eventBus  EventBus
	now       func() time.Time

	lock      sync.Mutex
	purchases map[string]*Purchase
}

func NewService(occupancy Occupancy, tickets TicketStore, catalog Catalog, eventBus EventBus) *Service {
	if occupancy == nil {
		panic("missing occupancy")
	}
	if tickets == nil {
		panic("missing ticket store")
	}
	if catalog == nil {
		panic("missing catalog")
	}
	if eventBus == nil {
		panic("missing event bus")
	}

	return &Service{
		occupancy: occupancy,
		tickets:   tickets,
		catalog:   catalog,
		eventBus:  eventBus,
		now:       time.Now,
		purchases: map[string]*Purchase{},
	}
}

// WithClock replaces the time source. Tests use it to drive the payment
// countdown.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Start() Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	p := &Purchase{
		ID:          uuid.NewString(),
		state:       StateChoosingPackage,
		lastTouched: s.now(),
	}
	s.purchases[p.ID] = p
	return p.snapshot()
}

func (s *Service) Get(id string) (Status, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}
	return p.snapshot(), nil
}

// SelectPackage fixes the required number count. Re-selecting resets any
// numbers picked so far.
func (s *Service) SelectPackage(ctx context.Context, id string, packageID int64) (Status, error) {
	pkg, err := s.catalog.PackageByID(ctx, packageID)
	if err != nil {
		return Status{}, fmt.Errorf("resolving package %d: %w", packageID, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}
	if p.state != StateChoosingPackage && p.state != StateChoosingNumbers {
		return Status{}, entity.ErrWrongState
	}

	p.pkg = &pkg
	p.numbers = nil
	p.state = StateChoosingNumbers
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// SelectNumbers replaces the current selection. Numbers already claimed or out
// of the raffle range are skipped silently, matching the grid where such a
// click is a no-op. When the selection completes the package, the flow moves
// on to buyer registration.
func (s *Service) SelectNumbers(ctx context.Context, id string, numbers []int) (Status, error) {
	settings, err := s.catalog.Settings(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("loading settings: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}
	if p.state != StateChoosingNumbers && p.state != StateCollectingBuyerInfo {
		return Status{}, entity.ErrWrongState
	}

	selected := make([]int, 0, p.pkg.Numbers)
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if n < 0 || n >= settings.RaffleSize {
			continue
		}
		if s.occupancy.IsClaimed(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		if len(selected) == p.pkg.Numbers {
			break
		}
		seen[n] = struct{}{}
		selected = append(selected, n)
	}

	p.numbers = selected
	if len(selected) == p.pkg.Numbers {
		p.state = StateCollectingBuyerInfo
	} else {
		p.state = StateChoosingNumbers
	}
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// SubmitBuyerInfo records the buyer and generates the ticket code.
func (s *Service) SubmitBuyerInfo(id string, buyer entity.BuyerInfo) (Status, error) {
	if err := validateBuyer(buyer); err != nil {
		return Status{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}
	if p.state != StateCollectingBuyerInfo {
		return Status{}, entity.ErrWrongState
	}
	if len(p.numbers) != p.pkg.Numbers {
		return Status{}, entity.ErrPackageIncomplete
	}

	p.buyer = &buyer
	p.ticketCode = GenerateTicketCode()
	p.state = StateChoosingPlatform
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// SelectPlatform opens the payment window. The platform must be enabled in
// the raffle settings; the due amount is the package price in the platform's
// currency.
func (s *Service) SelectPlatform(ctx context.Context, id string, platform entity.PaymentPlatform) (Status, error) {
	settings, err := s.catalog.Settings(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("loading settings: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}
	if p.state != StateChoosingPlatform && p.state != StateAwaitingReference {
		return Status{}, entity.ErrWrongState
	}

	option, known := settings.PaymentOptions.For(platform)
	if !known {
		return Status{}, &ValidationError{Field: "platform", Message: "unknown payment platform"}
	}
	if !option.Enabled {
		return Status{}, entity.ErrPlatformDisabled
	}

	p.platform = platform
	if platform == entity.PlatformNequi {
		p.dueAmount = p.pkg.PriceCOP
	} else {
		p.dueAmount = p.pkg.PriceUSD
	}
	p.paymentDeadline = s.now().Add(PaymentWindow)
	p.state = StateAwaitingReference
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// Back walks one modal step backwards: payment capture returns to platform
// choice, platform choice returns to the buyer form. Entered data is kept.
func (s *Service) Back(id string) (Status, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return Status{}, entity.ErrNotFound
	}

	switch p.state {
	case StateAwaitingReference:
		p.state = StateChoosingPlatform
	case StateChoosingPlatform:
		p.state = StateCollectingBuyerInfo
	default:
		return Status{}, entity.ErrWrongState
	}
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// SubmitReference validates the payment reference and persists the ticket.
// On persistence failure the purchase stays in the capture step so the buyer
// retries without re-entering anything. A persist that succeeds after the
// window ran out mid-call is still honored: discarding a paid ticket would be
// worse than a late confirmation.
func (s *Service) SubmitReference(ctx context.Context, id string, reference string) (Status, error) {
	s.lock.Lock()
	p, ok := s.purchases[id]
	if !ok {
		s.lock.Unlock()
		return Status{}, entity.ErrNotFound
	}
	if p.state != StateAwaitingReference {
		s.lock.Unlock()
		return Status{}, entity.ErrWrongState
	}

	if s.now().After(p.paymentDeadline) {
		p.state = StateChoosingPlatform
		status := p.snapshot()
		numbers := append([]int(nil), p.numbers...)
		purchaseID := p.ID
		s.lock.Unlock()

		metrics.PurchasesExpired.Inc()
		if err := s.eventBus.Publish(ctx, entity.PurchaseExpired_v1{
			Header:     entity.NewEventHeader(),
			PurchaseID: purchaseID,
			Numbers:    numbers,
		}); err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to publish purchase expiry")
		}
		return status, entity.ErrPaymentWindowExpired
	}

	if err := ValidateReference(p.platform, reference); err != nil {
		s.lock.Unlock()
		return Status{}, err
	}

	ticket := entity.Ticket{
		Name:            p.buyer.Name,
		Surname:         p.buyer.Surname,
		City:            p.buyer.City,
		Country:         p.buyer.Country,
		Whatsapp:        p.buyer.Whatsapp,
		Numbers:         append([]int(nil), p.numbers...),
		TotalValue:      p.dueAmount,
		PaymentPlatform: p.platform,
		Reference:       reference,
		TicketCode:      p.ticketCode,
		PrizeType:       p.buyer.PrizeType,
	}

	// The purchase leaves the capture step before the lock drops, so a
	// concurrent submit for the same purchase hits the state gate above and
	// only one persistence call is ever in flight.
	p.state = StatePersisting
	s.lock.Unlock()

	// The insert runs without the session lock: a slow persistence call must
	// not stall every other purchase.
	if err := s.tickets.InsertTicket(ctx, ticket); err != nil {
		s.lock.Lock()
		p.state = StateAwaitingReference
		s.lock.Unlock()
		return Status{}, fmt.Errorf("storing ticket: %w", err)
	}

	s.occupancy.MarkClaimed(ticket.Numbers)
	metrics.TicketsRegistered.WithLabelValues(string(ticket.PaymentPlatform)).Inc()

	// Locally stamped confirmation copy: the stored row's id and timestamp
	// are not read back, the public flow has no permission to.
	confirmation := ticket
	confirmation.ID = s.now().UnixMilli()
	confirmation.CreatedAt = s.now().UTC()
	confirmation.IsApproved = false

	if err := s.eventBus.Publish(ctx, entity.TicketRegistered_v1{
		Header: entity.NewEventHeaderWithIdempotencyKey(ticket.TicketCode),
		Ticket: confirmation,
	}); err != nil {
		log.FromContext(ctx).WithError(err).Error("failed to publish ticket registration")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	p.confirmed = &confirmation
	p.state = StateConfirmed
	p.lastTouched = s.now()
	return p.snapshot(), nil
}

// ExpireStale aborts payment captures whose window ran out and drops sessions
// nobody touched for a while. Called periodically by the scheduler.
func (s *Service) ExpireStale(ctx context.Context) {
	now := s.now()

	s.lock.Lock()
	var expired []entity.PurchaseExpired_v1
	for id, p := range s.purchases {
		if p.state == StateAwaitingReference && now.After(p.paymentDeadline) {
			p.state = StateChoosingPlatform
			expired = append(expired, entity.PurchaseExpired_v1{
				Header:     entity.NewEventHeader(),
				PurchaseID: p.ID,
				Numbers:    append([]int(nil), p.numbers...),
			})
		}
		if now.Sub(p.lastTouched) > sessionTTL {
			delete(s.purchases, id)
		}
	}
	s.lock.Unlock()

	for _, event := range expired {
		metrics.PurchasesExpired.Inc()
		if err := s.eventBus.Publish(ctx, event); err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to publish purchase expiry")
		}
	}
}

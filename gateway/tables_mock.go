package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"rifa/entity"
)

// TablesMock is an in-memory stand-in for the persistence service. Like the
// real service, it performs no cross-ticket validation of raffle numbers.
type TablesMock struct {
	lock sync.Mutex

	Settings      entity.Settings
	Packages      []entity.Package
	Prizes        []entity.Prize
	Notifications []entity.Notification
	Tickets       map[int64]entity.Ticket

	nextID int64

	// InsertTicketErr makes InsertTicket fail, to exercise retry paths.
	InsertTicketErr error
	// FetchErr makes every read fail, to exercise fail-stale behavior.
	FetchErr error
}

func (m *TablesMock) FetchSettings(ctx context.Context) (entity.Settings, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return entity.Settings{}, m.FetchErr
	}
	return m.Settings, nil
}

func (m *TablesMock) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if patch.RaffleDate != nil {
		m.Settings.RaffleDate = *patch.RaffleDate
	}
	if patch.RaffleSize != nil {
		m.Settings.RaffleSize = *patch.RaffleSize
	}
	if patch.USDToCOPRate != nil {
		m.Settings.USDToCOPRate = *patch.USDToCOPRate
	}
	if patch.RaffleInfo != nil {
		m.Settings.RaffleInfo = *patch.RaffleInfo
	}
	if patch.PaymentOptions != nil {
		m.Settings.PaymentOptions = *patch.PaymentOptions
	}
	if patch.LogoURL != nil {
		m.Settings.LogoURL = *patch.LogoURL
	}
	if patch.WinningNumbers != nil {
		m.Settings.WinningNumbers = *patch.WinningNumbers
	}
	if patch.Colors != nil {
		m.Settings.Colors = *patch.Colors
	}
	return m.Settings, nil
}

func (m *TablesMock) FetchPackages(ctx context.Context) ([]entity.Package, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return append([]entity.Package(nil), m.Packages...), nil
}

func (m *TablesMock) UpsertPackages(ctx context.Context, packages []entity.Package) ([]entity.Package, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Packages = append([]entity.Package(nil), packages...)
	sort.Slice(m.Packages, func(i, j int) bool { return m.Packages[i].ID < m.Packages[j].ID })
	return append([]entity.Package(nil), m.Packages...), nil
}

func (m *TablesMock) FetchPrizes(ctx context.Context) ([]entity.Prize, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return append([]entity.Prize(nil), m.Prizes...), nil
}

func (m *TablesMock) UpsertPrizes(ctx context.Context, prizes []entity.Prize) ([]entity.Prize, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.Prizes = append([]entity.Prize(nil), prizes...)
	sort.Slice(m.Prizes, func(i, j int) bool { return m.Prizes[i].ID < m.Prizes[j].ID })
	return append([]entity.Prize(nil), m.Prizes...), nil
}

func (m *TablesMock) FetchNotifications(ctx context.Context) ([]entity.Notification, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	notifications := append([]entity.Notification(nil), m.Notifications...)
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].DisplayOrder < notifications[j].DisplayOrder })
	return notifications, nil
}

func (m *TablesMock) InsertNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.nextID++
	notification.ID = m.nextID
	notification.CreatedAt = time.Now().UTC()
	m.Notifications = append(m.Notifications, notification)
	return notification, nil
}

func (m *TablesMock) UpdateNotification(ctx context.Context, id int64, notification entity.Notification) (entity.Notification, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i := range m.Notifications {
		if m.Notifications[i].ID == id {
			notification.ID = id
			notification.CreatedAt = m.Notifications[i].CreatedAt
			m.Notifications[i] = notification
			return notification, nil
		}
	}
	return entity.Notification{}, entity.ErrNotFound
}

func (m *TablesMock) DeleteNotification(ctx context.Context, id int64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i := range m.Notifications {
		if m.Notifications[i].ID == id {
			m.Notifications = append(m.Notifications[:i], m.Notifications[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (m *TablesMock) UpsertNotifications(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	byID := make(map[int64]entity.Notification, len(m.Notifications))
	for _, n := range m.Notifications {
		byID[n.ID] = n
	}
	for _, n := range notifications {
		byID[n.ID] = n
	}
	m.Notifications = m.Notifications[:0]
	for _, n := range byID {
		m.Notifications = append(m.Notifications, n)
	}
	sort.Slice(m.Notifications, func(i, j int) bool { return m.Notifications[i].DisplayOrder < m.Notifications[j].DisplayOrder })
	return append([]entity.Notification(nil), m.Notifications...), nil
}

func (m *TablesMock) FetchTickets(ctx context.Context) ([]entity.Ticket, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	tickets := make([]entity.Ticket, 0, len(m.Tickets))
	for _, t := range m.Tickets {
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}

func (m *TablesMock) InsertTicket(ctx context.Context, ticket entity.Ticket) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.InsertTicketErr != nil {
		return m.InsertTicketErr
	}

	if m.Tickets == nil {
		m.Tickets = make(map[int64]entity.Ticket)
	}
	m.nextID++
	ticket.ID = m.nextID
	ticket.CreatedAt = time.Now().UTC()
	m.Tickets[ticket.ID] = ticket
	return nil
}

func (m *TablesMock) UpdateTicket(ctx context.Context, id int64, patch map[string]any) (entity.Ticket, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	ticket, ok := m.Tickets[id]
	if !ok {
		return entity.Ticket{}, entity.ErrNotFound
	}
	if approved, ok := patch["is_approved"].(bool); ok {
		ticket.IsApproved = approved
	}
	m.Tickets[id] = ticket
	return ticket, nil
}

func (m *TablesMock) DeleteTicket(ctx context.Context, id int64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.Tickets[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.Tickets, id)
	return nil
}

func (m *TablesMock) OccupiedNumbers(ctx context.Context) ([]int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var numbers []int
	for _, t := range m.Tickets {
		numbers = append(numbers, t.Numbers...)
	}
	sort.Ints(numbers)
	return numbers, nil
}

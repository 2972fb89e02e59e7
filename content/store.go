// Package content caches the raffle configuration: settings, packages,
// prizes and notifications. The persistence service owns the data; the cache
// is replaced wholesale after every successful mutation.
package content

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"rifa/entity"
)

type Gateway interface {
	FetchSettings(ctx context.Context) (entity.Settings, error)
	UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error)

	FetchPackages(ctx context.Context) ([]entity.Package, error)
	UpsertPackages(ctx context.Context, packages []entity.Package) ([]entity.Package, error)

	FetchPrizes(ctx context.Context) ([]entity.Prize, error)
	UpsertPrizes(ctx context.Context, prizes []entity.Prize) ([]entity.Prize, error)

	FetchNotifications(ctx context.Context) ([]entity.Notification, error)
	InsertNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error)
	UpdateNotification(ctx context.Context, id int64, notification entity.Notification) (entity.Notification, error)
	DeleteNotification(ctx context.Context, id int64) error
	UpsertNotifications(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error)
}

type Store struct {
	gateway Gateway

	lock          sync.RWMutex
	settings      entity.Settings
	loaded        bool
	packages      []entity.Package
	prizes        []entity.Prize
	notifications []entity.Notification
}

func NewStore(gateway Gateway) *Store {
	if gateway == nil {
		panic("missing gateway")
	}
	return &Store{gateway: gateway}
}

// Load fetches everything the public page needs. Called once at startup and
// again whenever a full resync is wanted.
func (s *Store) Load(ctx context.Context) error {
	settings, err := s.gateway.FetchSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	packages, err := s.gateway.FetchPackages(ctx)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}
	prizes, err := s.gateway.FetchPrizes(ctx)
	if err != nil {
		return fmt.Errorf("loading prizes: %w", err)
	}
	notifications, err := s.gateway.FetchNotifications(ctx)
	if err != nil {
		return fmt.Errorf("loading notifications: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.settings = settings
	s.loaded = true
	s.packages = packages
	s.prizes = prizes
	s.notifications = notifications
	return nil
}

func (s *Store) Settings(ctx context.Context) (entity.Settings, error) {
	s.lock.RLock()
	if s.loaded {
		defer s.lock.RUnlock()
		return s.settings, nil
	}
	s.lock.RUnlock()

	settings, err := s.gateway.FetchSettings(ctx)
	if err != nil {
		return entity.Settings{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.settings = settings
	s.loaded = true
	return settings, nil
}

func (s *Store) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error) {
	settings, err := s.gateway.UpdateSettings(ctx, patch)
	if err != nil {
		return entity.Settings{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.settings = settings
	s.loaded = true
	return settings, nil
}

func (s *Store) Packages(context.Context) []entity.Package {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]entity.Package(nil), s.packages...)
}

func (s *Store) PackageByID(ctx context.Context, id int64) (entity.Package, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	pkg, found := lo.Find(s.packages, func(p entity.Package) bool { return p.ID == id })
	if !found {
		return entity.Package{}, entity.ErrNotFound
	}
	return pkg, nil
}

func (s *Store) UpdatePackages(ctx context.Context, packages []entity.Package) ([]entity.Package, error) {
	updated, err := s.gateway.UpsertPackages(ctx, packages)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.packages = updated
	return append([]entity.Package(nil), updated...), nil
}

func (s *Store) Prizes(context.Context) []entity.Prize {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]entity.Prize(nil), s.prizes...)
}

func (s *Store) UpdatePrizes(ctx context.Context, prizes []entity.Prize) ([]entity.Prize, error) {
	updated, err := s.gateway.UpsertPrizes(ctx, prizes)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.prizes = updated
	return append([]entity.Prize(nil), updated...), nil
}

func (s *Store) Notifications(context.Context) []entity.Notification {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]entity.Notification(nil), s.notifications...)
}

func (s *Store) AddNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error) {
	// New rows go after the highest existing order. Counting rows instead
	// would reuse an order number once a deletion leaves a gap.
	s.lock.RLock()
	highest := 0
	for _, n := range s.notifications {
		if n.DisplayOrder > highest {
			highest = n.DisplayOrder
		}
	}
	notification.DisplayOrder = highest + 1
	s.lock.RUnlock()

	created, err := s.gateway.InsertNotification(ctx, notification)
	if err != nil {
		return entity.Notification{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.notifications = append(s.notifications, created)
	return created, nil
}

func (s *Store) UpdateNotification(ctx context.Context, id int64, notification entity.Notification) (entity.Notification, error) {
	updated, err := s.gateway.UpdateNotification(ctx, id, notification)
	if err != nil {
		return entity.Notification{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i] = updated
			break
		}
	}
	return updated, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id int64) error {
	if err := s.gateway.DeleteNotification(ctx, id); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.notifications = lo.Filter(s.notifications, func(n entity.Notification, _ int) bool { return n.ID != id })
	return nil
}

// ReorderNotifications renumbers display_order to match the given id order
// and persists the whole list as one batch. A partial persist would leave
// display_order inconsistent with the displayed order, so on failure the
// optimistic local state is discarded with a full reload.
func (s *Store) ReorderNotifications(ctx context.Context, orderedIDs []int64) ([]entity.Notification, error) {
	s.lock.RLock()
	byID := lo.SliceToMap(s.notifications, func(n entity.Notification) (int64, entity.Notification) { return n.ID, n })
	s.lock.RUnlock()

	if len(orderedIDs) != len(byID) {
		return nil, &ReorderError{Reason: "id list does not match the notification set"}
	}

	reordered := make([]entity.Notification, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		n, ok := byID[id]
		if !ok {
			return nil, &ReorderError{Reason: fmt.Sprintf("unknown notification id %d", id)}
		}
		n.DisplayOrder = i + 1
		reordered = append(reordered, n)
	}

	updated, err := s.gateway.UpsertNotifications(ctx, reordered)
	if err != nil {
		if notifications, reloadErr := s.gateway.FetchNotifications(ctx); reloadErr == nil {
			s.lock.Lock()
			s.notifications = notifications
			s.lock.Unlock()
		}
		return nil, fmt.Errorf("persisting reorder: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.notifications = updated
	return append([]entity.Notification(nil), updated...), nil
}

type ReorderError struct {
	Reason string
}

func (e *ReorderError) Error() string {
	return "reorder rejected: " + e.Reason
}

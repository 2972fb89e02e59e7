package content_test

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rifa/content"
	"rifa/entity"
	"rifa/gateway"
)

func newTables() *gateway.TablesMock {
	return &gateway.TablesMock{
		Settings: entity.Settings{
			ID:           1,
			RaffleDate:   "2024-12-24",
			RaffleSize:   1000,
			USDToCOPRate: 4000,
		},
		Packages: []entity.Package{
			{ID: 1, Label: "x2", Numbers: 2, PriceCOP: 20000, PriceUSD: 5},
		},
		Prizes: []entity.Prize{
			{ID: 1, URL: "https://cdn.example.test/prize.png", Enabled: true},
		},
	}
}

func TestSettingsReadThrough(t *testing.T) {
	tables := newTables()
	store := content.NewStore(tables)
	ctx := context.Background()

	// no Load: the first read fetches on demand
	settings, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, settings.RaffleSize)

	// later reads come from the cache even when the source fails
	tables.FetchErr = assert.AnError
	settings, err = store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-24", settings.RaffleDate)
}

func TestUpdateSettingsPatchesOnlyGivenFields(t *testing.T) {
	tables := newTables()
	store := content.NewStore(tables)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	updated, err := store.UpdateSettings(ctx, entity.SettingsPatch{
		RaffleSize: lo.ToPtr(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, 10000, updated.RaffleSize)
	assert.Equal(t, "2024-12-24", updated.RaffleDate)

	cached, err := store.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10000, cached.RaffleSize)
}

func TestPackageLookup(t *testing.T) {
	store := content.NewStore(newTables())
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	pkg, err := store.PackageByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "x2", pkg.Label)

	_, err = store.PackageByID(ctx, 99)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestAddNotificationAppendsToOrder(t *testing.T) {
	store := content.NewStore(newTables())
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	first, err := store.AddNotification(ctx, entity.Notification{Title: "Draw moved", IsEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, 1, first.DisplayOrder)

	second, err := store.AddNotification(ctx, entity.Notification{Title: "New prizes", IsEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, 2, second.DisplayOrder)

	notifications := store.Notifications(ctx)
	require.Len(t, notifications, 2)
}

func TestAddNotificationAfterDeleteSkipsGap(t *testing.T) {
	store := content.NewStore(newTables())
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	first, err := store.AddNotification(ctx, entity.Notification{Title: "a"})
	require.NoError(t, err)
	_, err = store.AddNotification(ctx, entity.Notification{Title: "b"})
	require.NoError(t, err)
	third, err := store.AddNotification(ctx, entity.Notification{Title: "c"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteNotification(ctx, first.ID))

	added, err := store.AddNotification(ctx, entity.Notification{Title: "d"})
	require.NoError(t, err)
	assert.Equal(t, third.DisplayOrder+1, added.DisplayOrder)

	orders := lo.Map(store.Notifications(ctx), func(n entity.Notification, _ int) int { return n.DisplayOrder })
	assert.Equal(t, lo.Uniq(orders), orders)
}

func TestReorderNotificationsRenumbers(t *testing.T) {
	store := content.NewStore(newTables())
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	a, err := store.AddNotification(ctx, entity.Notification{Title: "a"})
	require.NoError(t, err)
	b, err := store.AddNotification(ctx, entity.Notification{Title: "b"})
	require.NoError(t, err)
	c, err := store.AddNotification(ctx, entity.Notification{Title: "c"})
	require.NoError(t, err)

	reordered, err := store.ReorderNotifications(ctx, []int64{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	assert.Equal(t, "c", reordered[0].Title)
	assert.Equal(t, 1, reordered[0].DisplayOrder)
	assert.Equal(t, "a", reordered[1].Title)
	assert.Equal(t, 2, reordered[1].DisplayOrder)
	assert.Equal(t, "b", reordered[2].Title)
	assert.Equal(t, 3, reordered[2].DisplayOrder)

	// the identity permutation is a no-op renumbering
	again, err := store.ReorderNotifications(ctx, []int64{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, reordered, again)
}

func TestReorderRejectsMismatchedIDs(t *testing.T) {
	store := content.NewStore(newTables())
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	a, err := store.AddNotification(ctx, entity.Notification{Title: "a"})
	require.NoError(t, err)
	_, err = store.AddNotification(ctx, entity.Notification{Title: "b"})
	require.NoError(t, err)

	var reorderErr *content.ReorderError

	_, err = store.ReorderNotifications(ctx, []int64{a.ID})
	require.ErrorAs(t, err, &reorderErr)

	_, err = store.ReorderNotifications(ctx, []int64{a.ID, 999})
	require.ErrorAs(t, err, &reorderErr)
}

type failingUpsertGateway struct {
	*gateway.TablesMock
}

func (g failingUpsertGateway) UpsertNotifications(context.Context, []entity.Notification) ([]entity.Notification, error) {
	return nil, assert.AnError
}

func TestReorderFailureReloadsFromSource(t *testing.T) {
	tables := newTables()
	store := content.NewStore(failingUpsertGateway{tables})
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	a, err := store.AddNotification(ctx, entity.Notification{Title: "a"})
	require.NoError(t, err)
	b, err := store.AddNotification(ctx, entity.Notification{Title: "b"})
	require.NoError(t, err)

	_, err = store.ReorderNotifications(ctx, []int64{b.ID, a.ID})
	require.Error(t, err)

	// the cache fell back to the stored order
	notifications := store.Notifications(ctx)
	require.Len(t, notifications, 2)
	assert.Equal(t, "a", notifications[0].Title)
	assert.Equal(t, "b", notifications[1].Title)
}

package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"rifa/entity"
)

// TablesClient talks to the PostgREST surface of the persistence service.
type TablesClient struct {
	supabase *SupabaseClient
}

func NewTablesClient(supabase *SupabaseClient) *TablesClient {
	if supabase == nil {
		panic("missing supabase client")
	}
	return &TablesClient{supabase: supabase}
}

const pgrstObject = "application/vnd.pgrst.object+json"

func (c *TablesClient) FetchSettings(ctx context.Context) (entity.Settings, error) {
	var settings entity.Settings
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetHeader("Accept", pgrstObject).
		SetQueryParam("id", "eq.1").
		SetResult(&settings).
		Get(restPrefix + "/settings")
	if err != nil {
		return entity.Settings{}, fmt.Errorf("fetching settings: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return entity.Settings{}, persistenceErr("fetch settings", resp)
	}
	return settings, nil
}

func (c *TablesClient) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error) {
	var settings entity.Settings
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Accept", pgrstObject).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq.1").
		SetBody(patch).
		SetResult(&settings).
		Patch(restPrefix + "/settings")
	if err != nil {
		return entity.Settings{}, fmt.Errorf("updating settings: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return entity.Settings{}, persistenceErr("update settings", resp)
	}
	return settings, nil
}

func (c *TablesClient) FetchPackages(ctx context.Context) ([]entity.Package, error) {
	var packages []entity.Package
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "id.asc").
		SetResult(&packages).
		Get(restPrefix + "/packages")
	if err != nil {
		return nil, fmt.Errorf("fetching packages: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("fetch packages", resp)
	}
	return packages, nil
}

func (c *TablesClient) UpsertPackages(ctx context.Context, packages []entity.Package) ([]entity.Package, error) {
	var updated []entity.Package
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody(packages).
		SetResult(&updated).
		Post(restPrefix + "/packages")
	if err != nil {
		return nil, fmt.Errorf("upserting packages: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("upsert packages", resp)
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })
	return updated, nil
}

func (c *TablesClient) FetchPrizes(ctx context.Context) ([]entity.Prize, error) {
	var prizes []entity.Prize
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "id.asc").
		SetResult(&prizes).
		Get(restPrefix + "/prizes")
	if err != nil {
		return nil, fmt.Errorf("fetching prizes: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("fetch prizes", resp)
	}
	return prizes, nil
}

func (c *TablesClient) UpsertPrizes(ctx context.Context, prizes []entity.Prize) ([]entity.Prize, error) {
	var updated []entity.Prize
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody(prizes).
		SetResult(&updated).
		Post(restPrefix + "/prizes")
	if err != nil {
		return nil, fmt.Errorf("upserting prizes: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("upsert prizes", resp)
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })
	return updated, nil
}

func (c *TablesClient) FetchNotifications(ctx context.Context) ([]entity.Notification, error) {
	var notifications []entity.Notification
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "display_order.asc").
		SetResult(&notifications).
		Get(restPrefix + "/notifications")
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("fetch notifications", resp)
	}
	return notifications, nil
}

func (c *TablesClient) InsertNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error) {
	var created entity.Notification
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Accept", pgrstObject).
		SetHeader("Prefer", "return=representation").
		SetBody(notification).
		SetResult(&created).
		Post(restPrefix + "/notifications")
	if err != nil {
		return entity.Notification{}, fmt.Errorf("inserting notification: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return entity.Notification{}, persistenceErr("insert notification", resp)
	}
	return created, nil
}

func (c *TablesClient) UpdateNotification(ctx context.Context, id int64, notification entity.Notification) (entity.Notification, error) {
	var updated entity.Notification
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Accept", pgrstObject).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetBody(notification).
		SetResult(&updated).
		Patch(restPrefix + "/notifications")
	if err != nil {
		return entity.Notification{}, fmt.Errorf("updating notification %d: %w", id, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return entity.Notification{}, persistenceErr("update notification", resp)
	}
	return updated, nil
}

func (c *TablesClient) DeleteNotification(ctx context.Context, id int64) error {
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		Delete(restPrefix + "/notifications")
	if err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return persistenceErr("delete notification", resp)
	}
	return nil
}

// UpsertNotifications persists a reordered list as one batch, so display_order
// is renumbered atomically on the server side or not at all.
func (c *TablesClient) UpsertNotifications(ctx context.Context, notifications []entity.Notification) ([]entity.Notification, error) {
	var updated []entity.Notification
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=representation").
		SetBody(notifications).
		SetResult(&updated).
		Post(restPrefix + "/notifications")
	if err != nil {
		return nil, fmt.Errorf("upserting notifications: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("upsert notifications", resp)
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].DisplayOrder < updated[j].DisplayOrder })
	return updated, nil
}

func (c *TablesClient) FetchTickets(ctx context.Context) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc").
		SetResult(&tickets).
		Get(restPrefix + "/tickets")
	if err != nil {
		return nil, fmt.Errorf("fetching tickets: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("fetch tickets", resp)
	}
	return tickets, nil
}

// InsertTicket stores a new ticket. The row id and created_at are assigned by
// the persistence service; the anon key is used on purpose so the insert runs
// under the same row-level security as the public page.
func (c *TablesClient) InsertTicket(ctx context.Context, ticket entity.Ticket) error {
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody([]entity.Ticket{ticket}).
		Post(restPrefix + "/tickets")
	if err != nil {
		return fmt.Errorf("inserting ticket: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return persistenceErr("insert ticket", resp)
	}
	return nil
}

// UpdateTicket applies a partial update and returns the stored row.
func (c *TablesClient) UpdateTicket(ctx context.Context, id int64, patch map[string]any) (entity.Ticket, error) {
	var updated entity.Ticket
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetHeader("Accept", pgrstObject).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetBody(patch).
		SetResult(&updated).
		Patch(restPrefix + "/tickets")
	if err != nil {
		return entity.Ticket{}, fmt.Errorf("updating ticket %d: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotAcceptable || resp.StatusCode() == http.StatusNotFound {
		return entity.Ticket{}, entity.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return entity.Ticket{}, persistenceErr("update ticket", resp)
	}
	return updated, nil
}

func (c *TablesClient) DeleteTicket(ctx context.Context, id int64) error {
	resp, err := c.supabase.serviceRequest().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		Delete(restPrefix + "/tickets")
	if err != nil {
		return fmt.Errorf("deleting ticket %d: %w", id, err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return persistenceErr("delete ticket", resp)
	}
	return nil
}

// OccupiedNumbers calls the restricted RPC that returns claimed numbers only,
// never buyer data. This is the least-privilege path for anonymous visitors.
func (c *TablesClient) OccupiedNumbers(ctx context.Context) ([]int, error) {
	var numbers []int
	resp, err := c.supabase.anonRequest().
		SetContext(ctx).
		SetBody(map[string]any{}).
		SetResult(&numbers).
		Post(restPrefix + "/rpc/get_occupied_numbers")
	if err != nil {
		return nil, fmt.Errorf("fetching occupied numbers: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, persistenceErr("occupied numbers", resp)
	}
	return numbers, nil
}

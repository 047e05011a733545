package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"
)

// CachedItem is the item read model stored in Redis as a hash. Nil references
// and timestamps are stored as empty strings.
type CachedItem struct {
	ID              uuid.UUID
	LedgerNo        string
	ItemName        string
	Quantity        int
	Unit            string
	Group           string
	ProcurementDate time.Time
	CustodianID     *uuid.UUID
	IssuedToID      *uuid.UUID
	IssuedDate      *time.Time
	AssignedDate    *time.Time
	CreatedBy       uuid.UUID
	DeletedAt       *time.Time
	CondemnedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemCache provides read-through entries for single items.
// Key format: "item:{itemID}"
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, itemID uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	d := decoder{vals: vals}
	item := &CachedItem{
		ID:              d.uuid("id"),
		LedgerNo:        vals["ledger_no"],
		ItemName:        vals["item_name"],
		Quantity:        d.int("quantity"),
		Unit:            vals["unit"],
		Group:           vals["group"],
		ProcurementDate: d.time("procurement_date"),
		CustodianID:     d.optUUID("custodian_id"),
		IssuedToID:      d.optUUID("issued_to_id"),
		IssuedDate:      d.optTime("issued_date"),
		AssignedDate:    d.optTime("assigned_date"),
		CreatedBy:       d.uuid("created_by"),
		DeletedAt:       d.optTime("deleted_at"),
		CondemnedAt:     d.optTime("condemned_at"),
		CreatedAt:       d.time("created_at"),
		UpdatedAt:       d.time("updated_at"),
	}
	if d.err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", itemID, d.err)
	}
	return item, nil
}

// setIfNotOlder replaces the hash unless the stored version is newer.
// KEYS[1] is the item key, ARGV[1] the version, ARGV[2] the TTL in seconds
// and the rest are field/value pairs.
var setIfNotOlder = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'version', ARGV[1], unpack(ARGV, 3))
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 1
`)

// Set writes a cached item as a Redis hash with a 24-hour TTL. An entry
// with a later UpdatedAt is left in place, so a slow read-through cannot
// overwrite a fresher warm.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	args := []any{
		strconv.FormatInt(item.UpdatedAt.UnixMicro(), 10),
		strconv.Itoa(int(ItemCacheTTL / time.Second)),
		"id", item.ID.String(),
		"ledger_no", item.LedgerNo,
		"item_name", item.ItemName,
		"quantity", strconv.Itoa(item.Quantity),
		"unit", item.Unit,
		"group", item.Group,
		"procurement_date", formatTime(&item.ProcurementDate),
		"custodian_id", formatUUID(item.CustodianID),
		"issued_to_id", formatUUID(item.IssuedToID),
		"issued_date", formatTime(item.IssuedDate),
		"assigned_date", formatTime(item.AssignedDate),
		"created_by", item.CreatedBy.String(),
		"deleted_at", formatTime(item.DeletedAt),
		"condemned_at", formatTime(item.CondemnedAt),
		"created_at", formatTime(&item.CreatedAt),
		"updated_at", formatTime(&item.UpdatedAt),
	}
	if err := setIfNotOlder.Run(ctx, c.client.Client(), []string{c.key(item.ID)}, args...).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete evicts the given items. Missing keys are ignored.
func (c *ItemCache) Delete(ctx context.Context, itemIDs ...uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Client().Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "item:{itemID}"
func (c *ItemCache) key(itemID uuid.UUID) string {
	return itemCacheKeyPrefix + ":" + itemID.String()
}

func formatUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// decoder parses hash fields and keeps the first error.
type decoder struct {
	vals map[string]string
	err  error
}

func (d *decoder) uuid(field string) uuid.UUID {
	id, err := uuid.Parse(d.vals[field])
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return id
}

func (d *decoder) optUUID(field string) *uuid.UUID {
	if d.vals[field] == "" {
		return nil
	}
	id := d.uuid(field)
	return &id
}

func (d *decoder) time(field string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, d.vals[field])
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return t
}

func (d *decoder) optTime(field string) *time.Time {
	if d.vals[field] == "" {
		return nil
	}
	t := d.time(field)
	return &t
}

func (d *decoder) int(field string) int {
	n, err := strconv.Atoi(d.vals[field])
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return n
}

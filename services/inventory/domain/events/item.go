package events

import (
	"time"

	"github.com/google/uuid"
)

// Inventory topics.
const (
	TopicItemCreated           = "item.created"
	TopicItemUpdated           = "item.updated"
	TopicItemCustodianAssigned = "item.custodian_assigned"
	TopicItemDeleted           = "item.deleted"
	TopicItemsCondemned        = "item.condemned"
)

// ItemChangedEvent is published on item.created, item.updated,
// item.custodian_assigned and item.deleted.
type ItemChangedEvent struct {
	EventID     uuid.UUID  `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int        `json:"version"`
	ItemID      uuid.UUID  `json:"item_id"`
	LedgerNo    string     `json:"ledger_no"`
	Group       string     `json:"group"`
	Status      string     `json:"status"`
	CustodianID *uuid.UUID `json:"custodian_id,omitempty"`
	ActorID     uuid.UUID  `json:"actor_id"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// ItemsCondemnedEvent is published once per bulk condemn with the ids that
// actually changed.
type ItemsCondemnedEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	Version    int         `json:"version"`
	ItemIDs    []uuid.UUID `json:"item_ids"`
	ActorID    uuid.UUID   `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}

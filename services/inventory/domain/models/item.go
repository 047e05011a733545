package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/services/inventory/domain"
)

// Status is the lifecycle state of an item. It is derived from the item's
// references and terminal timestamps; see Item.Status.
type Status string

// Lifecycle states. Deleted and condemned are terminal.
const (
	StatusAvailable Status = "available"
	StatusAssigned  Status = "assigned"
	StatusIssued    Status = "issued"
	StatusDeleted   Status = "deleted"
	StatusCondemned Status = "condemned"
)

// MaxQuantity is the largest quantity the store's integer column holds.
const MaxQuantity = math.MaxInt32

// Statuses lists every lifecycle state.
var Statuses = []Status{StatusAvailable, StatusAssigned, StatusIssued, StatusDeleted, StatusCondemned}

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDeleted || s == StatusCondemned
}

// Details are the holder-editable attributes of an item.
type Details struct {
	LedgerNo        LedgerNo
	ItemName        ItemName
	Quantity        int
	Unit            Unit
	ProcurementDate time.Time
}

// Item is the aggregate root of the inventory context. CustodianID, IssuedToID
// and CreatedBy are non-owning references into the identity context.
type Item struct {
	ID uuid.UUID
	Details
	Group        string // creator's group, never changes
	CustodianID  *uuid.UUID
	IssuedToID   *uuid.UUID
	IssuedDate   *time.Time
	AssignedDate *time.Time
	CreatedBy    uuid.UUID
	DeletedAt    *time.Time
	CondemnedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewItem records a new item in group. With a custodian it starts assigned,
// otherwise available.
func NewItem(d Details, group string, createdBy uuid.UUID, custodian *uuid.UUID, now time.Time) *Item {
	item := &Item{
		ID:        uuid.New(),
		Details:   d,
		Group:     group,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if custodian != nil {
		item.setCustodian(*custodian, now)
	}
	return item
}

// Status derives the lifecycle state.
func (i *Item) Status() Status {
	switch {
	case i.CondemnedAt != nil:
		return StatusCondemned
	case i.DeletedAt != nil:
		return StatusDeleted
	case i.IssuedToID != nil:
		return StatusIssued
	case i.CustodianID != nil:
		return StatusAssigned
	default:
		return StatusAvailable
	}
}

// ResponsibleHolder is the custodian, or the recording holder while none is set.
func (i *Item) ResponsibleHolder() uuid.UUID {
	if i.CustodianID != nil {
		return *i.CustodianID
	}
	return i.CreatedBy
}

// Update replaces the editable details and custodian. assignedDate is reset
// when the custodian changes and cleared when it is removed.
func (i *Item) Update(d Details, custodian *uuid.UUID, now time.Time) error {
	if i.Status().Terminal() {
		return domain.ErrInvalidTransition
	}
	i.Details = d
	switch {
	case custodian == nil:
		i.CustodianID = nil
		i.AssignedDate = nil
	case i.CustodianID == nil || *i.CustodianID != *custodian:
		i.setCustodian(*custodian, now)
	}
	i.UpdatedAt = now
	return nil
}

// AssignCustodian hands the item to custodian.
func (i *Item) AssignCustodian(custodian uuid.UUID, now time.Time) error {
	if i.Status().Terminal() {
		return domain.ErrInvalidTransition
	}
	i.setCustodian(custodian, now)
	i.UpdatedAt = now
	return nil
}

// MarkDeleted soft-deletes the item. It reports false when the item was
// already deleted; a condemned item cannot be deleted.
func (i *Item) MarkDeleted(now time.Time) (bool, error) {
	switch i.Status() {
	case StatusDeleted:
		return false, nil
	case StatusCondemned:
		return false, domain.ErrInvalidTransition
	}
	i.DeletedAt = &now
	i.IssuedToID = nil
	i.IssuedDate = nil
	i.UpdatedAt = now
	return true, nil
}

func (i *Item) setCustodian(id uuid.UUID, now time.Time) {
	i.CustodianID = &id
	i.AssignedDate = &now
}

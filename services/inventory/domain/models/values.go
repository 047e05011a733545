package models

import (
	"fmt"
	"strings"

	"github.com/ghuser/stockledger/pkg/catalog"
	"github.com/ghuser/stockledger/pkg/validator"
)

// LedgerNo is the alphanumeric register number of an item, unique system-wide.
type LedgerNo string

// NewLedgerNo constructs a valid LedgerNo.
func NewLedgerNo(s string) (LedgerNo, error) {
	s = strings.TrimSpace(s)
	if !validator.IsLedgerNo(s) {
		return "", fmt.Errorf("ledger number %q must be alphanumeric", s)
	}
	return LedgerNo(s), nil
}

func (l LedgerNo) String() string { return string(l) }

// ItemName is a display name made of letters and spaces.
type ItemName string

// NewItemName constructs a valid ItemName.
func NewItemName(s string) (ItemName, error) {
	s = strings.TrimSpace(s)
	if s == "" || !validator.IsItemName(s) {
		return "", fmt.Errorf("item name %q must contain only letters and spaces", s)
	}
	return ItemName(s), nil
}

func (n ItemName) String() string { return string(n) }

// Unit is a catalog unit of measure.
type Unit string

// NewUnit constructs a valid Unit.
func NewUnit(s string) (Unit, error) {
	if !catalog.IsUnit(s) {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return Unit(s), nil
}

func (u Unit) String() string { return string(u) }

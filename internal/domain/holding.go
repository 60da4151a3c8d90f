package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the tax wrapper a holding sits in
type AccountType string

const (
	AccountTypeNISAGrowth  AccountType = "NISA_growth"
	AccountTypeNISAReserve AccountType = "NISA_reserve"
	AccountTypeIDeCo       AccountType = "iDeCo"
	AccountTypeDC          AccountType = "DC"
	AccountTypeSpecific    AccountType = "specific"
	AccountTypeGeneral     AccountType = "general"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeNISAGrowth: true, AccountTypeNISAReserve: true, AccountTypeIDeCo: true,
	AccountTypeDC: true, AccountTypeSpecific: true, AccountTypeGeneral: true,
}

// OwnerType describes whose name a holding is registered under
type OwnerType string

const (
	OwnerTypeSelf   OwnerType = "self"
	OwnerTypeSpouse OwnerType = "spouse"
	OwnerTypeJoint  OwnerType = "joint"
	OwnerTypeChild  OwnerType = "child"
	OwnerTypeOther  OwnerType = "other"
)

// Owner is the nominee of one or more holdings
type Owner struct {
	ID        uuid.UUID
	Name      string
	OwnerType OwnerType
}

// Validate ensures the owner adheres to domain rules
func (o *Owner) Validate() error {
	if o.Name == "" {
		return errors.New("owner name cannot be empty")
	}
	switch o.OwnerType {
	case OwnerTypeSelf, OwnerTypeSpouse, OwnerTypeJoint, OwnerTypeChild, OwnerTypeOther:
		return nil
	}
	return fmt.Errorf("invalid owner type %q", o.OwnerType)
}

// Holding is a position of Quantity units of an Asset
type Holding struct {
	ID              uuid.UUID
	Asset           Asset
	Owner           Owner
	Quantity        decimal.Decimal
	CostTotal       decimal.Decimal // Acquisition cost in base currency
	AcquisitionDate time.Time
	AccountType     AccountType
	Broker          string
	Notes           string
}

// CostPerUnit returns CostTotal / Quantity, or zero when Quantity is not positive
func (h *Holding) CostPerUnit() decimal.Decimal {
	if !h.Quantity.IsPositive() {
		return decimal.Zero
	}
	return h.CostTotal.Div(h.Quantity)
}

// Validate ensures the holding adheres to domain rules
func (h *Holding) Validate() error {
	if h.Asset.ID == uuid.Nil {
		return errors.New("holding must reference an asset")
	}
	if h.Owner.ID == uuid.Nil {
		return errors.New("holding must reference an owner")
	}
	if h.Quantity.IsNegative() {
		return errors.New("holding quantity cannot be negative")
	}
	if h.CostTotal.IsNegative() {
		return errors.New("holding cost cannot be negative")
	}
	if !validAccountTypes[h.AccountType] {
		return fmt.Errorf("invalid account type %q", h.AccountType)
	}
	return nil
}

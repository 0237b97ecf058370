// Package bank holds the domain model shared by the inventory, ledger, and
// person stores and the services layered on top of them.
package bank

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BloodType is one of the eight ABO/Rh codes.
type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists every valid code; the order is stable for display.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

// ParseBloodType validates a textual blood type code.
func ParseBloodType(raw string) (BloodType, error) {
	for _, bt := range BloodTypes {
		if string(bt) == raw {
			return bt, nil
		}
	}
	return "", fmt.Errorf("invalid blood type %q", raw)
}

// ShelfLifeDays is the fixed shelf life of a collected unit.
const ShelfLifeDays = 42

// Eligibility windows in whole days between consecutive actions by the same
// person. The boundary is inclusive: exactly N elapsed days is eligible.
const (
	DonationCooldownDays = 60
	RequestCooldownDays  = 40
)

// RequestStatus is fixed when the ledger row is created and never revisited.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusFulfilled RequestStatus = "fulfilled"
)

// BloodUnit is one row of the inventory store. QuantityML stays positive for
// the unit's whole lifetime; allocation deletes the row instead of writing a
// zero.
type BloodUnit struct {
	ID             uuid.UUID
	BloodType      BloodType
	QuantityML     int
	DonorID        *string
	CollectionDate time.Time
	ExpiryDate     time.Time
}

// NewBloodUnit builds a unit collected today with the fixed shelf life.
func NewBloodUnit(bloodType BloodType, quantityML int, donorID string, today time.Time) BloodUnit {
	collected := Date(today)
	return BloodUnit{
		ID:             uuid.New(),
		BloodType:      bloodType,
		QuantityML:     quantityML,
		DonorID:        &donorID,
		CollectionDate: collected,
		ExpiryDate:     collected.AddDate(0, 0, ShelfLifeDays),
	}
}

// Usable reports whether the unit may still be allocated: expiry strictly in
// the future.
func (u BloodUnit) Usable(today time.Time) bool {
	return u.ExpiryDate.After(Date(today))
}

// BloodRequest is one immutable row of the request ledger.
type BloodRequest struct {
	ID          uuid.UUID
	BloodType   BloodType
	QuantityML  int
	RecipientID *string
	RequestDate time.Time
	Status      RequestStatus
}

// Donor carries the subset of donor identity this core reads. The record is
// owned by the surrounding account layer.
type Donor struct {
	ID               string
	BloodType        BloodType
	LastDonationDate *time.Time
}

// Recipient mirrors Donor for the requesting side.
type Recipient struct {
	ID              string
	BloodType       BloodType
	LastRequestDate *time.Time
}

// Date truncates t to a UTC calendar date. All cooldown and expiry math works
// on whole days, never time of day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days elapsed from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

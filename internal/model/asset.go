package model

import (
	"strings"
	"time"
)

// Asset is one physical item, or a quantity of identical items at one location.
type Asset struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	Quantity     int       `json:"quantity"`
	Location     string    `json:"location"`
	RFIDCode     string    `json:"rfid_code"`
	PhotoRef     string    `json:"photo_ref,omitempty"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAsset holds the caller-supplied fields of an asset to be created.
type NewAsset struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Quantity     int    `json:"quantity"`
	Location     string `json:"location"`
	RFIDCode     string `json:"rfid_code"`
	PhotoRef     string `json:"photo_ref,omitempty"`
	DepartmentID int64  `json:"department_id"`
}

// Validate checks the required fields of a new asset.
func (a NewAsset) Validate() error {
	if err := requireText("name", a.Name); err != nil {
		return err
	}
	if err := requireText("serial_number", a.SerialNumber); err != nil {
		return err
	}
	if err := requireText("location", a.Location); err != nil {
		return err
	}
	if err := requireText("rfid_code", a.RFIDCode); err != nil {
		return err
	}
	if a.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	return nil
}

// AssetUpdate is a partial update. Nil fields are left unchanged.
type AssetUpdate struct {
	Name         *string `json:"name,omitempty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`
	Location     *string `json:"location,omitempty"`
	RFIDCode     *string `json:"rfid_code,omitempty"`
	PhotoRef     *string `json:"photo_ref,omitempty"`
}

// Validate checks every supplied field with the same rules as NewAsset.
func (u AssetUpdate) Validate() error {
	text := []struct {
		field string
		value *string
	}{
		{"name", u.Name},
		{"serial_number", u.SerialNumber},
		{"location", u.Location},
		{"rfid_code", u.RFIDCode},
	}
	for _, f := range text {
		if f.value == nil {
			continue
		}
		if err := requireText(f.field, *f.value); err != nil {
			return err
		}
	}
	if u.Quantity != nil && *u.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	return nil
}

// Apply copies the supplied fields onto a.
func (u AssetUpdate) Apply(a *Asset) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.SerialNumber != nil {
		a.SerialNumber = *u.SerialNumber
	}
	if u.Quantity != nil {
		a.Quantity = *u.Quantity
	}
	if u.Location != nil {
		a.Location = *u.Location
	}
	if u.RFIDCode != nil {
		a.RFIDCode = *u.RFIDCode
	}
	if u.PhotoRef != nil {
		a.PhotoRef = *u.PhotoRef
	}
}

// Empty reports whether the update carries no fields.
func (u AssetUpdate) Empty() bool {
	return u.Name == nil && u.SerialNumber == nil && u.Quantity == nil &&
		u.Location == nil && u.RFIDCode == nil && u.PhotoRef == nil
}

// MatchesQuery reports whether any of the searchable fields contains the
// query, ignoring case. The query is expected to be lower-cased already.
func (a *Asset) MatchesQuery(lowerQuery string) bool {
	for _, field := range []string{a.Name, a.SerialNumber, a.RFIDCode, a.Location} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

package model

import "testing"

func validNewAsset() NewAsset {
	return NewAsset{
		Name:         "Projector",
		SerialNumber: "SN-1",
		Quantity:     1,
		Location:     "Room 101",
		RFIDCode:     "X1",
		DepartmentID: 1,
	}
}

func TestNewAssetValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewAsset)
		field  string
	}{
		{"valid", func(*NewAsset) {}, ""},
		{"blank name", func(a *NewAsset) { a.Name = "  " }, "name"},
		{"blank serial", func(a *NewAsset) { a.SerialNumber = "" }, "serial_number"},
		{"blank location", func(a *NewAsset) { a.Location = "" }, "location"},
		{"blank rfid", func(a *NewAsset) { a.RFIDCode = "" }, "rfid_code"},
		{"zero quantity", func(a *NewAsset) { a.Quantity = 0 }, "quantity"},
		{"negative quantity", func(a *NewAsset) { a.Quantity = -3 }, "quantity"},
	}

	for _, tt := range tests {
		a := validNewAsset()
		tt.mutate(&a)
		err := a.Validate()
		if tt.field == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		ve, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("%s: expected *ValidationError, got %v", tt.name, err)
			continue
		}
		if ve.Field != tt.field {
			t.Errorf("%s: expected field %q, got %q", tt.name, tt.field, ve.Field)
		}
	}
}

func TestAssetUpdateValidateAndApply(t *testing.T) {
	blank := ""
	if err := (AssetUpdate{Name: &blank}).Validate(); !IsValidation(err) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}
	zero := 0
	if err := (AssetUpdate{Quantity: &zero}).Validate(); !IsValidation(err) {
		t.Errorf("expected validation error for zero quantity, got %v", err)
	}
	if !(AssetUpdate{}).Empty() {
		t.Error("expected empty update to report Empty")
	}

	a := Asset{Name: "Old", SerialNumber: "S", Quantity: 1, Location: "L", RFIDCode: "X1"}
	name, qty := "New", 4
	u := AssetUpdate{Name: &name, Quantity: &qty}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	u.Apply(&a)
	if a.Name != "New" || a.Quantity != 4 {
		t.Errorf("expected supplied fields applied, got %+v", a)
	}
	if a.SerialNumber != "S" || a.Location != "L" || a.RFIDCode != "X1" {
		t.Errorf("expected unspecified fields unchanged, got %+v", a)
	}
}

func TestAssetMatchesQuery(t *testing.T) {
	a := Asset{Name: "Dell Laptop", SerialNumber: "SN-42", Location: "Lab B", RFIDCode: "TAG-9"}
	for _, q := range []string{"dell", "sn-4", "lab b", "tag-9", "top"} {
		if !a.MatchesQuery(q) {
			t.Errorf("expected %q to match", q)
		}
	}
	if a.MatchesQuery("printer") {
		t.Error("expected 'printer' not to match")
	}
}

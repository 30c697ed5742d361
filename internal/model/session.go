package model

import "time"

// InventorySession is one reconciliation run. Sessions carry no closed
// state; ending one is a client-side event.
type InventorySession struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	StartedAt    time.Time `json:"started_at"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// InventoryScan is one observation of an RFID code during a session. It
// references the code only, never an asset.
type InventoryScan struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	RFIDCode  string    `json:"rfid_code"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the outcome of reconciling a session against a catalog.
type Result struct {
	Found   []Asset         `json:"found"`
	Missing []Asset         `json:"missing"`
	Scanned []InventoryScan `json:"scanned"`
}

// Unmatched returns the distinct scanned codes that matched no asset in
// Found, in the order they were first scanned.
func (r *Result) Unmatched() []string {
	found := make(map[string]bool, len(r.Found))
	for _, a := range r.Found {
		found[a.RFIDCode] = true
	}
	seen := make(map[string]bool)
	codes := []string{}
	for _, s := range r.Scanned {
		if found[s.RFIDCode] || seen[s.RFIDCode] {
			continue
		}
		seen[s.RFIDCode] = true
		codes = append(codes, s.RFIDCode)
	}
	return codes
}

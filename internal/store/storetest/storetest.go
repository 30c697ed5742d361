// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
)

// Factory returns a fresh, empty store for one test.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Setup", testSetup},
		{"DuplicateUsername", testDuplicateUsername},
		{"UpdateUserPassword", testUpdateUserPassword},
		{"CreateAndGetAsset", testCreateAndGetAsset},
		{"DuplicateRFIDRejected", testDuplicateRFIDRejected},
		{"UpdateAssetPartial", testUpdateAssetPartial},
		{"UpdateAssetDuplicateRFID", testUpdateAssetDuplicateRFID},
		{"ListAssetsNewestFirst", testListAssetsNewestFirst},
		{"SearchAssets", testSearchAssets},
		{"DeleteAsset", testDeleteAsset},
		{"CreateAssetUnknownDepartment", testCreateAssetUnknownDepartment},
		{"Sessions", testSessions},
		{"ScansInInsertionOrder", testScansInInsertionOrder},
		{"AddScanUnknownSession", testAddScanUnknownSession},
		{"DeleteSessionCascadesScans", testDeleteSessionCascadesScans},
		{"DeleteDepartmentCascades", testDeleteDepartmentCascades},
		{"JWTSecretStable", testJWTSecretStable},
		{"RevokeToken", testRevokeToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFakeClock(t)
			tt.fn(t, newStore(t))
		})
	}
}

// useFakeClock makes store.Now advance one second per call so ordering by
// creation time is deterministic.
func useFakeClock(t *testing.T) {
	t.Helper()
	var mu sync.Mutex
	current := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	orig := store.Now
	store.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { store.Now = orig })
}

// SetupDepartment creates the user and department most tests need.
func SetupDepartment(t *testing.T, s store.Store) *model.Department {
	t.Helper()
	_, dept, err := s.Setup(context.Background(), "admin", "hash", "IT")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return dept
}

// MustCreateAsset creates an asset with the given name and RFID code.
func MustCreateAsset(t *testing.T, s store.Store, departmentID int64, name, code string) *model.Asset {
	t.Helper()
	a, err := s.CreateAsset(context.Background(), model.NewAsset{
		Name:         name,
		SerialNumber: "SN-" + code,
		Quantity:     1,
		Location:     "Storage",
		RFIDCode:     code,
		DepartmentID: departmentID,
	})
	if err != nil {
		t.Fatalf("CreateAsset(%s): %v", code, err)
	}
	return a
}

func testSetup(t *testing.T, s store.Store) {
	ctx := context.Background()

	count, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users in a new store, got %d", count)
	}

	user, dept, err := s.Setup(ctx, "admin", "hash", "IT")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if user.Username != "admin" || dept.Name != "IT" || dept.UserID != user.ID {
		t.Errorf("unexpected setup result: %+v %+v", user, dept)
	}

	got, err := s.GetDepartmentByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetDepartmentByUser: %v", err)
	}
	if got == nil || got.ID != dept.ID {
		t.Errorf("expected department %d for user, got %+v", dept.ID, got)
	}

	byName, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName == nil || byName.PasswordHash != "hash" {
		t.Errorf("expected stored user with hash, got %+v", byName)
	}

	_, _, err = s.Setup(ctx, "other", "hash", "HR")
	if !model.IsState(err) {
		t.Errorf("expected StateError on second setup, got %v", err)
	}
	count, _ = s.CountUsers(ctx)
	if count != 1 {
		t.Errorf("expected 1 user after rejected setup, got %d", count)
	}
}

func testDuplicateUsername(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "hash"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := s.CreateUser(ctx, "alice", "hash2")
	if !model.IsValidation(err) {
		t.Errorf("expected ValidationError for duplicate username, got %v", err)
	}

	missing, err := s.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func testUpdateUserPassword(t *testing.T, s store.Store) {
	ctx := context.Background()

	user, _ := s.CreateUser(ctx, "pwuser", "oldhash")
	if err := s.UpdateUserPassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	if err := s.UpdateUserPassword(ctx, 999, "x"); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing user, got %v", err)
	}
}

func testCreateAndGetAsset(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)

	created, err := s.CreateAsset(ctx, model.NewAsset{
		Name:         "Projector",
		SerialNumber: "EPS-1",
		Quantity:     2,
		Location:     "Room 101",
		RFIDCode:     "X1",
		PhotoRef:     "photo.jpg",
		DepartmentID: dept.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if created.ID == 0 || created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected id and equal timestamps, got %+v", created)
	}

	got, err := s.GetAsset(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if got.Name != "Projector" || got.SerialNumber != "EPS-1" || got.Quantity != 2 ||
		got.Location != "Room 101" || got.RFIDCode != "X1" || got.PhotoRef != "photo.jpg" ||
		got.DepartmentID != dept.ID {
		t.Errorf("stored asset does not match: %+v", got)
	}

	byCode, err := s.GetAssetByRFID(ctx, "X1")
	if err != nil {
		t.Fatalf("GetAssetByRFID: %v", err)
	}
	if byCode == nil || byCode.ID != created.ID {
		t.Errorf("expected lookup by rfid to find asset %d, got %+v", created.ID, byCode)
	}

	if a, _ := s.GetAssetByRFID(ctx, "x1"); a != nil {
		t.Error("expected rfid lookup to be case-sensitive")
	}
	if a, _ := s.GetAsset(ctx, 999); a != nil {
		t.Error("expected nil for missing asset")
	}
}

func testDuplicateRFIDRejected(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)

	MustCreateAsset(t, s, dept.ID, "A", "X1")
	_, err := s.CreateAsset(ctx, model.NewAsset{
		Name: "B", SerialNumber: "SN", Quantity: 1, Location: "L", RFIDCode: "X1", DepartmentID: dept.ID,
	})
	if !model.IsValidation(err) {
		t.Fatalf("expected ValidationError for duplicate rfid, got %v", err)
	}

	assets, _ := s.ListAssets(ctx, dept.ID)
	if len(assets) != 1 || assets[0].Name != "A" {
		t.Errorf("expected only the first asset to exist, got %+v", assets)
	}
}

func testUpdateAssetPartial(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	a := MustCreateAsset(t, s, dept.ID, "Laptop", "X1")

	qty := 5
	loc := "Lab"
	updated, err := s.UpdateAsset(ctx, a.ID, model.AssetUpdate{Quantity: &qty, Location: &loc})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if updated.Quantity != 5 || updated.Location != "Lab" {
		t.Errorf("expected supplied fields updated, got %+v", updated)
	}
	if updated.Name != "Laptop" || updated.RFIDCode != "X1" || updated.SerialNumber != a.SerialNumber {
		t.Errorf("expected other fields unchanged, got %+v", updated)
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) {
		t.Errorf("expected updated_at to advance: before %v after %v", a.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("expected created_at unchanged")
	}

	// An empty update still refreshes the timestamp.
	touched, err := s.UpdateAsset(ctx, a.ID, model.AssetUpdate{})
	if err != nil {
		t.Fatalf("UpdateAsset empty: %v", err)
	}
	if !touched.UpdatedAt.After(updated.UpdatedAt) {
		t.Error("expected empty update to refresh updated_at")
	}

	// Keeping its own code is not a conflict.
	same := "X1"
	if _, err := s.UpdateAsset(ctx, a.ID, model.AssetUpdate{RFIDCode: &same}); err != nil {
		t.Errorf("expected rewriting own rfid to succeed, got %v", err)
	}

	if _, err := s.UpdateAsset(ctx, 999, model.AssetUpdate{Quantity: &qty}); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing asset, got %v", err)
	}
}

func testUpdateAssetDuplicateRFID(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	MustCreateAsset(t, s, dept.ID, "A", "X1")
	b := MustCreateAsset(t, s, dept.ID, "B", "X2")

	taken := "X1"
	name := "renamed"
	_, err := s.UpdateAsset(ctx, b.ID, model.AssetUpdate{Name: &name, RFIDCode: &taken})
	if !model.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := s.GetAsset(ctx, b.ID)
	if got.RFIDCode != "X2" || got.Name != "B" {
		t.Errorf("expected rejected update to write nothing, got %+v", got)
	}
}

func testListAssetsNewestFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	MustCreateAsset(t, s, dept.ID, "first", "X1")
	MustCreateAsset(t, s, dept.ID, "second", "X2")
	MustCreateAsset(t, s, dept.ID, "third", "X3")

	other, err := s.CreateDepartment(ctx, "Other", dept.UserID)
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	MustCreateAsset(t, s, other.ID, "elsewhere", "Y1")

	assets, err := s.ListAssets(ctx, dept.ID)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(assets) != len(want) {
		t.Fatalf("expected %d assets, got %d", len(want), len(assets))
	}
	for i, name := range want {
		if assets[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, assets[i].Name)
		}
	}

	empty, err := s.ListAssets(ctx, 999)
	if err != nil {
		t.Fatalf("ListAssets unknown department: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}
}

func testSearchAssets(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)

	mk := func(name, serial, location, code string) {
		t.Helper()
		_, err := s.CreateAsset(ctx, model.NewAsset{
			Name: name, SerialNumber: serial, Quantity: 1, Location: location, RFIDCode: code, DepartmentID: dept.ID,
		})
		if err != nil {
			t.Fatalf("CreateAsset: %v", err)
		}
	}
	mk("Dell Laptop", "SN-100", "Room A", "TAG-1")
	mk("Printer", "HP-200", "Room B", "TAG-2")
	mk("Monitor", "SN-300", "Lab 50%", "LAPTOP-TAG")

	tests := []struct {
		query string
		want  []string
	}{
		{"laptop", []string{"Monitor", "Dell Laptop"}},
		{"hp-2", []string{"Printer"}},
		{"ROOM", []string{"Printer", "Dell Laptop"}},
		{"tag-2", []string{"Printer"}},
		{"50%", []string{"Monitor"}},
		{"%", []string{"Monitor"}},
		{"_", nil},
		{"scanner", nil},
	}

	for _, tt := range tests {
		got, err := s.SearchAssets(ctx, dept.ID, tt.query)
		if err != nil {
			t.Fatalf("SearchAssets(%q): %v", tt.query, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("SearchAssets(%q): expected %d results, got %d", tt.query, len(tt.want), len(got))
			continue
		}
		for i, name := range tt.want {
			if got[i].Name != name {
				t.Errorf("SearchAssets(%q)[%d]: expected %q, got %q", tt.query, i, name, got[i].Name)
			}
		}
	}
}

func testDeleteAsset(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	a := MustCreateAsset(t, s, dept.ID, "Delete Me", "X1")

	if err := s.DeleteAsset(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if got, _ := s.GetAsset(ctx, a.ID); got != nil {
		t.Error("expected hard-deleted asset to be gone")
	}
	if err := s.DeleteAsset(ctx, a.ID); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError deleting twice, got %v", err)
	}

	// The code is free again once the asset is gone.
	MustCreateAsset(t, s, dept.ID, "Reuse", "X1")
}

func testCreateAssetUnknownDepartment(t *testing.T, s store.Store) {
	_, err := s.CreateAsset(context.Background(), model.NewAsset{
		Name: "A", SerialNumber: "S", Quantity: 1, Location: "L", RFIDCode: "X1", DepartmentID: 42,
	})
	if !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError for unknown department, got %v", err)
	}
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)

	first, err := s.CreateSession(ctx, "Q1 count", dept.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if first.Name != "Q1 count" || first.DepartmentID != dept.ID || first.StartedAt.IsZero() {
		t.Errorf("unexpected session: %+v", first)
	}
	second, _ := s.CreateSession(ctx, "Q2 count", dept.ID)

	got, err := s.GetSession(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil || got.Name != "Q1 count" {
		t.Errorf("expected session Q1 count, got %+v", got)
	}

	sessions, err := s.ListSessions(ctx, dept.ID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("expected sessions newest first, got %+v", sessions)
	}

	if _, err := s.CreateSession(ctx, "orphan", 999); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError for unknown department, got %v", err)
	}
	if missing, _ := s.GetSession(ctx, 999); missing != nil {
		t.Error("expected nil for missing session")
	}
}

func testScansInInsertionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	sess, _ := s.CreateSession(ctx, "count", dept.ID)

	codes := []string{"X2", "X1", "X2", "UNKNOWN"}
	for _, c := range codes {
		if _, err := s.AddScan(ctx, sess.ID, c); err != nil {
			t.Fatalf("AddScan(%s): %v", c, err)
		}
	}

	scans, err := s.ListScans(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(scans) != len(codes) {
		t.Fatalf("expected %d scans including duplicates, got %d", len(codes), len(scans))
	}
	for i, c := range codes {
		if scans[i].RFIDCode != c || scans[i].SessionID != sess.ID {
			t.Errorf("scan %d: expected %q, got %+v", i, c, scans[i])
		}
		if i > 0 && scans[i].Timestamp.Before(scans[i-1].Timestamp) {
			t.Errorf("scan %d is older than scan %d", i, i-1)
		}
	}

	empty, _ := s.ListScans(ctx, 999)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil scan list, got %#v", empty)
	}
}

func testAddScanUnknownSession(t *testing.T, s store.Store) {
	_, err := s.AddScan(context.Background(), 42, "X1")
	if !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError for unknown session, got %v", err)
	}
}

func testDeleteSessionCascadesScans(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	sess, _ := s.CreateSession(ctx, "count", dept.ID)
	keep, _ := s.CreateSession(ctx, "keep", dept.ID)
	s.AddScan(ctx, sess.ID, "X1")
	s.AddScan(ctx, sess.ID, "X2")
	s.AddScan(ctx, keep.ID, "X1")

	if err := s.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if got, _ := s.GetSession(ctx, sess.ID); got != nil {
		t.Error("expected session to be deleted")
	}
	scans, _ := s.ListScans(ctx, sess.ID)
	if len(scans) != 0 {
		t.Errorf("expected scans to cascade, got %d", len(scans))
	}
	kept, _ := s.ListScans(ctx, keep.ID)
	if len(kept) != 1 {
		t.Errorf("expected other session's scans untouched, got %d", len(kept))
	}
	if err := s.DeleteSession(ctx, sess.ID); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError deleting twice, got %v", err)
	}
}

func testDeleteDepartmentCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	dept := SetupDepartment(t, s)
	a := MustCreateAsset(t, s, dept.ID, "A", "X1")
	sess, _ := s.CreateSession(ctx, "count", dept.ID)
	s.AddScan(ctx, sess.ID, "X1")

	if err := s.DeleteDepartment(ctx, dept.ID); err != nil {
		t.Fatalf("DeleteDepartment: %v", err)
	}
	if got, _ := s.GetDepartment(ctx, dept.ID); got != nil {
		t.Error("expected department to be deleted")
	}
	if got, _ := s.GetAsset(ctx, a.ID); got != nil {
		t.Error("expected asset to cascade")
	}
	if got, _ := s.GetSession(ctx, sess.ID); got != nil {
		t.Error("expected session to cascade")
	}
	if scans, _ := s.ListScans(ctx, sess.ID); len(scans) != 0 {
		t.Error("expected scans to cascade")
	}
	if err := s.DeleteDepartment(ctx, dept.ID); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError deleting twice, got %v", err)
	}
}

func testJWTSecretStable(t *testing.T, s store.Store) {
	ctx := context.Background()

	secret1, err := s.JWTSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := s.JWTSecret(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func testRevokeToken(t *testing.T, s store.Store) {
	ctx := context.Background()

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	expiry := time.Now().Add(24 * time.Hour)
	if err := s.RevokeToken(ctx, "jti-1", expiry); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Revoking twice is not an error.
	if err := s.RevokeToken(ctx, "jti-1", expiry); err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}

	revoked, _ = s.IsTokenRevoked(ctx, "jti-1")
	if !revoked {
		t.Error("expected token to be revoked")
	}
	revoked, _ = s.IsTokenRevoked(ctx, "jti-2")
	if revoked {
		t.Error("expected different token not to be revoked")
	}
}

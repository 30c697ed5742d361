package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
	"github.com/erazemk/assettrack/internal/store/storetest"
)

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "assettrack.json"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestDocumentStoreInMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open("")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "assettrack.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dept := storetest.SetupDepartment(t, s)
	asset := storetest.MustCreateAsset(t, s, dept.ID, "Laptop", "X1")
	sess, _ := s.CreateSession(ctx, "count", dept.ID)
	s.AddScan(ctx, sess.ID, "X1")
	secret, _ := s.JWTSecret(ctx)

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, _ := reopened.GetAsset(ctx, asset.ID)
	if got == nil || got.RFIDCode != "X1" || !got.CreatedAt.Equal(asset.CreatedAt) {
		t.Errorf("expected asset to survive reopen, got %+v", got)
	}
	user, _ := reopened.GetUserByUsername(ctx, "admin")
	if user == nil || user.PasswordHash != "hash" {
		t.Errorf("expected user with password hash, got %+v", user)
	}
	scans, _ := reopened.ListScans(ctx, sess.ID)
	if len(scans) != 1 {
		t.Errorf("expected 1 scan after reopen, got %d", len(scans))
	}
	if again, _ := reopened.JWTSecret(ctx); again != secret {
		t.Error("expected jwt secret to survive reopen")
	}

	// IDs keep increasing after reopen.
	next := storetest.MustCreateAsset(t, reopened, dept.ID, "Monitor", "X2")
	if next.ID <= asset.ID {
		t.Errorf("expected new id above %d, got %d", asset.ID, next.ID)
	}
}

func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s, _ := Open("")
	dept := storetest.SetupDepartment(t, s)
	storetest.MustCreateAsset(t, s, dept.ID, "A", "X1")
	b := storetest.MustCreateAsset(t, s, dept.ID, "B", "X2")

	name := "changed"
	code := "X1"
	if _, err := s.UpdateAsset(ctx, b.ID, model.AssetUpdate{Name: &name, RFIDCode: &code}); !model.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got, _ := s.GetAsset(ctx, b.ID)
	if got.Name != "B" {
		t.Errorf("expected name unchanged after rejected update, got %q", got.Name)
	}
}

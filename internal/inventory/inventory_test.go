package inventory

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/erazemk/assettrack/internal/db"
	"github.com/erazemk/assettrack/internal/metrics"
	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
	"github.com/erazemk/assettrack/internal/store/docstore"
)

type fixture struct {
	svc     *Service
	store   store.Store
	metrics *metrics.Metrics
	deptID  int64
}

// backends runs fn once per store implementation.
func backends(t *testing.T, fn func(t *testing.T, f fixture)) {
	t.Helper()
	factories := map[string]func(t *testing.T) store.Store{
		"sqlite": func(t *testing.T) store.Store { return store.NewSQLite(db.NewTestDB(t)) },
		"doc": func(t *testing.T) store.Store {
			s, err := docstore.Open("")
			if err != nil {
				t.Fatalf("docstore.Open: %v", err)
			}
			return s
		},
	}
	for name, newStore := range factories {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			_, dept, err := s.Setup(context.Background(), "admin", "hash", "IT")
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			m := metrics.New()
			fn(t, fixture{svc: New(s, m), store: s, metrics: m, deptID: dept.ID})
		})
	}
}

func (f fixture) asset(t *testing.T, name, code string) *model.Asset {
	t.Helper()
	a, err := f.store.CreateAsset(context.Background(), model.NewAsset{
		Name: name, SerialNumber: "SN-" + code, Quantity: 1, Location: "Office", RFIDCode: code, DepartmentID: f.deptID,
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	return a
}

func (f fixture) session(t *testing.T, codes ...string) *model.InventorySession {
	t.Helper()
	ctx := context.Background()
	sess, err := f.svc.StartSession(ctx, "count", f.deptID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for _, c := range codes {
		if _, err := f.svc.RecordScan(ctx, sess.ID, c); err != nil {
			t.Fatalf("RecordScan(%s): %v", c, err)
		}
	}
	return sess
}

func names(assets []model.Asset) []string {
	out := []string{}
	for _, a := range assets {
		out = append(out, a.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStartSession(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		sess, err := f.svc.StartSession(ctx, "  Spring audit  ", f.deptID)
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		if sess.Name != "Spring audit" || sess.DepartmentID != f.deptID {
			t.Errorf("unexpected session: %+v", sess)
		}

		if _, err := f.svc.StartSession(ctx, "   ", f.deptID); !model.IsValidation(err) {
			t.Errorf("expected ValidationError for blank name, got %v", err)
		}
		if _, err := f.svc.StartSession(ctx, "x", 999); !model.IsNotFound(err) {
			t.Errorf("expected NotFoundError for unknown department, got %v", err)
		}
		if got := testutil.ToFloat64(f.metrics.SessionsStarted); got != 1 {
			t.Errorf("expected 1 session counted, got %v", got)
		}
	})
}

func TestRecordScan(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		sess := f.session(t)

		if _, err := f.svc.RecordScan(ctx, 0, "X1"); !model.IsState(err) {
			t.Errorf("expected StateError without a session, got %v", err)
		}
		if _, err := f.svc.RecordScan(ctx, 999, "X1"); !model.IsState(err) {
			t.Errorf("expected StateError for unknown session, got %v", err)
		}
		if _, err := f.svc.RecordScan(ctx, sess.ID, ""); !model.IsValidation(err) {
			t.Errorf("expected ValidationError for empty code, got %v", err)
		}

		// Unknown codes are accepted at scan time.
		scan, err := f.svc.RecordScan(ctx, sess.ID, "NOT-IN-CATALOG")
		if err != nil {
			t.Fatalf("RecordScan: %v", err)
		}
		if scan.RFIDCode != "NOT-IN-CATALOG" || scan.SessionID != sess.ID || scan.Timestamp.IsZero() {
			t.Errorf("unexpected scan: %+v", scan)
		}
		if got := testutil.ToFloat64(f.metrics.ScansRecorded); got != 1 {
			t.Errorf("expected 1 scan counted, got %v", got)
		}
	})
}

func TestListScansReadsFresh(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		sess := f.session(t, "A", "B")

		first, _ := f.svc.ListScans(ctx, sess.ID)
		f.svc.RecordScan(ctx, sess.ID, "C")
		second, _ := f.svc.ListScans(ctx, sess.ID)

		if len(first) != 2 || len(second) != 3 {
			t.Errorf("expected 2 then 3 scans, got %d then %d", len(first), len(second))
		}
		if second[2].RFIDCode != "C" {
			t.Errorf("expected newest scan last, got %+v", second)
		}
	})
}

func TestReconcileScenarios(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()

		t.Run("one of two scanned", func(t *testing.T) {
			f := freshDepartment(t, f)
			f.asset(t, "A", "X1")
			f.asset(t, "B", "X2")
			sess := f.session(t, "X1")

			r, err := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if !equal(names(r.Found), []string{"A"}) || !equal(names(r.Missing), []string{"B"}) {
				t.Errorf("expected found [A] missing [B], got %v %v", names(r.Found), names(r.Missing))
			}
		})

		t.Run("no scans", func(t *testing.T) {
			f := freshDepartment(t, f)
			f.asset(t, "A", "X1")
			sess := f.session(t)

			r, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if len(r.Found) != 0 || !equal(names(r.Missing), []string{"A"}) {
				t.Errorf("expected everything missing, got %+v", r)
			}
		})

		t.Run("empty catalog", func(t *testing.T) {
			f := freshDepartment(t, f)
			sess := f.session(t, "X1", "X2")

			r, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if len(r.Found) != 0 || len(r.Missing) != 0 || len(r.Scanned) != 2 {
				t.Errorf("expected empty partition with 2 scans, got %+v", r)
			}
		})

		t.Run("repeated scans", func(t *testing.T) {
			f := freshDepartment(t, f)
			f.asset(t, "A", "X1")
			sess := f.session(t, "X1", "X1", "X1")

			r, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if !equal(names(r.Found), []string{"A"}) || len(r.Missing) != 0 || len(r.Scanned) != 3 {
				t.Errorf("expected found [A] with 3 scans, got %+v", r)
			}
		})

		t.Run("duplicate rfid rejected", func(t *testing.T) {
			f := freshDepartment(t, f)
			f.asset(t, "A", "X1")
			_, err := f.store.CreateAsset(ctx, model.NewAsset{
				Name: "B", SerialNumber: "S", Quantity: 1, Location: "L", RFIDCode: "X1", DepartmentID: f.deptID,
			})
			if !model.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			assets, _ := f.store.ListAssets(ctx, f.deptID)
			if len(assets) != 1 {
				t.Errorf("expected exactly one asset, got %d", len(assets))
			}
		})

		t.Run("asset deleted after scan", func(t *testing.T) {
			f := freshDepartment(t, f)
			a := f.asset(t, "A", "X1")
			f.asset(t, "B", "X2")
			sess := f.session(t, "X1")
			if err := f.store.DeleteAsset(ctx, a.ID); err != nil {
				t.Fatalf("DeleteAsset: %v", err)
			}

			r, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if len(r.Found) != 0 || !equal(names(r.Missing), []string{"B"}) {
				t.Errorf("expected deleted asset in neither partition, got %+v", r)
			}
			if len(r.Scanned) != 1 || r.Scanned[0].RFIDCode != "X1" {
				t.Errorf("expected original scan to remain, got %+v", r.Scanned)
			}
		})

		t.Run("asset added after session start", func(t *testing.T) {
			f := freshDepartment(t, f)
			sess := f.session(t, "X1")
			f.asset(t, "Late", "X1")

			r, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)
			if !equal(names(r.Found), []string{"Late"}) {
				t.Errorf("expected current catalog to be used, got %+v", r)
			}
		})
	})
}

// freshDepartment adds a new department to the fixture's store so subtests
// do not see each other's assets.
func freshDepartment(t *testing.T, f fixture) fixture {
	t.Helper()
	ctx := context.Background()
	first, err := f.store.GetDepartment(ctx, f.deptID)
	if err != nil || first == nil {
		t.Fatalf("GetDepartment: %v", err)
	}
	dept, err := f.store.CreateDepartment(ctx, t.Name(), first.UserID)
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	f.deptID = dept.ID
	return f
}

func TestReconcileIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.asset(t, "A", "X1")
		f.asset(t, "B", "X2")
		f.asset(t, "C", "X3")
		sess := f.session(t, "X3", "X1", "STRAY")

		first, err := f.svc.Reconcile(ctx, sess.ID, f.deptID)
		if err != nil {
			t.Fatalf("Reconcile: %v", err)
		}
		second, _ := f.svc.Reconcile(ctx, sess.ID, f.deptID)

		if !equal(names(first.Found), names(second.Found)) || !equal(names(first.Missing), names(second.Missing)) {
			t.Errorf("expected identical results, got %+v and %+v", first, second)
		}
		if !equal(names(first.Found), []string{"C", "A"}) {
			t.Errorf("expected found in catalog order [C A], got %v", names(first.Found))
		}
		if got := testutil.ToFloat64(f.metrics.Reconciliations); got != 2 {
			t.Errorf("expected 2 reconciliations counted, got %v", got)
		}
		if got := testutil.ToFloat64(f.metrics.LastUnmatched); got != 1 {
			t.Errorf("expected 1 unmatched code, got %v", got)
		}
	})
}

func TestReconcileErrors(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		sess := f.session(t)

		if _, err := f.svc.Reconcile(ctx, sess.ID, 999); !model.IsNotFound(err) {
			t.Errorf("expected NotFoundError for unknown department, got %v", err)
		}
		if _, err := f.svc.Reconcile(ctx, 999, f.deptID); !model.IsNotFound(err) {
			t.Errorf("expected NotFoundError for unknown session, got %v", err)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		sess := f.session(t, "X1", "X2")

		if err := f.svc.DeleteSession(ctx, sess.ID); err != nil {
			t.Fatalf("DeleteSession: %v", err)
		}
		if _, err := f.svc.GetSession(ctx, sess.ID); !model.IsNotFound(err) {
			t.Errorf("expected NotFoundError after delete, got %v", err)
		}
		scans, _ := f.svc.ListScans(ctx, sess.ID)
		if len(scans) != 0 {
			t.Errorf("expected scans removed, got %d", len(scans))
		}
		if _, err := f.svc.RecordScan(ctx, sess.ID, "X3"); !model.IsState(err) {
			t.Errorf("expected StateError scanning into deleted session, got %v", err)
		}
	})
}

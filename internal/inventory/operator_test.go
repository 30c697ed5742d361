package inventory

import (
	"context"
	"testing"

	"github.com/erazemk/assettrack/internal/model"
)

func TestOperatorLifecycle(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		f.asset(t, "A", "X1")
		f.asset(t, "B", "X2")
		op := f.svc.NewOperator(f.deptID)

		if op.Current() != nil {
			t.Fatal("expected no current session")
		}
		if _, err := op.Scan(ctx, "X1"); !model.IsState(err) {
			t.Errorf("expected StateError scanning without session, got %v", err)
		}
		if _, err := op.Finish(ctx); !model.IsState(err) {
			t.Errorf("expected StateError finishing without session, got %v", err)
		}

		sess, err := op.Start(ctx, "count")
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		if op.Current() == nil || op.Current().ID != sess.ID {
			t.Fatalf("expected started session to be current")
		}

		for _, c := range []string{"X2", "X2", "STRAY"} {
			if _, err := op.Scan(ctx, c); err != nil {
				t.Fatalf("Scan(%s): %v", c, err)
			}
		}

		r, err := op.Finish(ctx)
		if err != nil {
			t.Fatalf("Finish: %v", err)
		}
		if !equal(names(r.Found), []string{"B"}) || !equal(names(r.Missing), []string{"A"}) {
			t.Errorf("unexpected result: %+v", r)
		}
		if op.Current() != nil {
			t.Error("expected Finish to end the session")
		}

		// Ending is client-side; the session and its scans persist.
		scans, _ := f.svc.ListScans(ctx, sess.ID)
		if len(scans) != 3 {
			t.Errorf("expected 3 persisted scans, got %d", len(scans))
		}

		if _, err := op.Resume(ctx, sess.ID); err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if _, err := op.Scan(ctx, "X1"); err != nil {
			t.Fatalf("Scan after resume: %v", err)
		}
		r, _ = op.Finish(ctx)
		if len(r.Missing) != 0 || len(r.Found) != 2 {
			t.Errorf("expected everything found after resume, got %+v", r)
		}
	})
}

func TestOperatorEndDiscardsHandle(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		op := f.svc.NewOperator(f.deptID)

		if _, err := op.Start(ctx, "count"); err != nil {
			t.Fatalf("Start: %v", err)
		}
		op.End()
		if op.Current() != nil {
			t.Error("expected no current session after End")
		}
		if _, err := op.Scan(ctx, "X1"); !model.IsState(err) {
			t.Errorf("expected StateError after End, got %v", err)
		}

		sessions, _ := f.svc.ListSessions(ctx, f.deptID)
		if len(sessions) != 1 {
			t.Errorf("expected the ended session to remain stored, got %d", len(sessions))
		}
	})
}

func TestOperatorStartReplacesCurrent(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		op := f.svc.NewOperator(f.deptID)

		first, _ := op.Start(ctx, "first")
		second, _ := op.Start(ctx, "second")
		op.Scan(ctx, "X1")

		if op.Current().ID != second.ID {
			t.Errorf("expected second session current")
		}
		if scans, _ := f.svc.ListScans(ctx, first.ID); len(scans) != 0 {
			t.Errorf("expected first session untouched, got %d scans", len(scans))
		}
		if _, err := op.Start(ctx, " "); !model.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
		if op.Current().ID != second.ID {
			t.Error("expected failed Start to keep current session")
		}
	})
}

func TestOperatorResumeStaysInDepartment(t *testing.T) {
	backends(t, func(t *testing.T, f fixture) {
		ctx := context.Background()
		sess := f.session(t)
		other := freshDepartment(t, f)

		op := f.svc.NewOperator(other.deptID)
		if _, err := op.Resume(ctx, sess.ID); !model.IsNotFound(err) {
			t.Errorf("expected NotFound resuming another department's session, got %v", err)
		}
		if _, err := op.Resume(ctx, 9999); !model.IsNotFound(err) {
			t.Errorf("expected NotFound for unknown session, got %v", err)
		}
		if op.Current() != nil {
			t.Error("expected failed Resume to leave no current session")
		}
	})
}

package model

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestResultUnmatched(t *testing.T) {
	r := Result{
		Found: []Asset{{RFIDCode: "X1"}},
		Scanned: []InventoryScan{
			{RFIDCode: "STRAY"},
			{RFIDCode: "X1"},
			{RFIDCode: "OTHER"},
			{RFIDCode: "STRAY"},
		},
	}
	got := r.Unmatched()
	want := []string{"STRAY", "OTHER"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmatched() = %v, want %v", got, want)
	}
}

func TestErrorPredicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", &NotFoundError{Kind: "department", ID: 7})
	if !IsNotFound(wrapped) {
		t.Error("expected wrapped NotFoundError to be detected")
	}
	if IsValidation(wrapped) || IsState(wrapped) || IsStorage(wrapped) {
		t.Error("expected only IsNotFound to match")
	}
	if wrapped.Error() != "outer: department 7 not found" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}

	cause := errors.New("disk full")
	se := &StorageError{Op: "creating asset", Err: cause}
	if !errors.Is(se, cause) {
		t.Error("expected StorageError to unwrap to its cause")
	}
	if !IsState(&StateError{Message: "no active session"}) {
		t.Error("expected IsState to match")
	}
}

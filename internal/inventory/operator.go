package inventory

import (
	"context"

	"github.com/erazemk/assettrack/internal/model"
)

// Operator is a client's handle on its current session. It is not safe for
// concurrent use; each client owns one.
type Operator struct {
	svc          *Service
	departmentID int64
	current      *model.InventorySession
}

// NewOperator returns an operator working in the given department.
func (s *Service) NewOperator(departmentID int64) *Operator {
	return &Operator{svc: s, departmentID: departmentID}
}

// Start begins a new session and makes it current, replacing any previous one.
func (o *Operator) Start(ctx context.Context, name string) (*model.InventorySession, error) {
	sess, err := o.svc.StartSession(ctx, name, o.departmentID)
	if err != nil {
		return nil, err
	}
	o.current = sess
	return sess, nil
}

// Resume makes an existing session of the operator's department current.
func (o *Operator) Resume(ctx context.Context, sessionID int64) (*model.InventorySession, error) {
	sess, err := o.svc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.DepartmentID != o.departmentID {
		return nil, &model.NotFoundError{Kind: "session", ID: sessionID}
	}
	o.current = sess
	return sess, nil
}

// Current returns the current session, or nil.
func (o *Operator) Current() *model.InventorySession {
	return o.current
}

// Scan records code against the current session.
func (o *Operator) Scan(ctx context.Context, code string) (*model.InventoryScan, error) {
	if o.current == nil {
		return nil, errNoSession()
	}
	return o.svc.RecordScan(ctx, o.current.ID, code)
}

// End clears the current session. Nothing is persisted; reconcile first if
// a result is wanted.
func (o *Operator) End() {
	o.current = nil
}

// Finish reconciles the current session and ends it. On error the session
// stays current.
func (o *Operator) Finish(ctx context.Context) (model.Result, error) {
	if o.current == nil {
		return model.Result{}, errNoSession()
	}
	result, err := o.svc.Reconcile(ctx, o.current.ID, o.departmentID)
	if err != nil {
		return model.Result{}, err
	}
	o.End()
	return result, nil
}

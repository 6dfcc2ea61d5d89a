package app

import "fmt"

// WriteError wraps a rejected gateway write. The store was not touched.
type WriteError struct {
	Entity string
	Op     string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CascadeError reports a multi-step cascade that failed after some steps may
// already have succeeded. The store was rebuilt from the backend to reconcile;
// data may have been left in an inconsistent state.
type CascadeError struct {
	Entity    string
	ID        string
	Err       error
	ReloadErr error
}

func (e *CascadeError) Error() string {
	if e.ReloadErr != nil {
		return fmt.Sprintf("deleting %s %s failed and the reconciliation reload also failed: %v (reload: %v)",
			e.Entity, e.ID, e.Err, e.ReloadErr)
	}
	return fmt.Sprintf("deleting %s %s failed; data may be inconsistent, state reloaded: %v",
		e.Entity, e.ID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// NotFoundError reports an operation against an entity id the store does not
// hold. No gateway call was made.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Entity, e.ID)
}

// ImportError rejects a CSV import before any write happens.
type ImportError struct {
	Collection string
	Row        int // 1-based data row, 0 when the whole file is at fault
	Reason     string
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import into %s rejected at row %d: %s", e.Collection, e.Row, e.Reason)
	}
	return fmt.Sprintf("import into %s rejected: %s", e.Collection, e.Reason)
}

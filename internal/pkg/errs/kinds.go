package errs

// Markers shared by every layer. Callers test them with Is.
var (
	// ErrTransient marks store timeouts, serialization failures, deadlocks and
	// lock timeouts. The operation did not commit and can be retried.
	ErrTransient = New("transient store failure")

	ErrDatabaseOperationFailed = New("database operation failed")
	ErrInvariantViolated       = New("stored data violates an engine invariant")
)

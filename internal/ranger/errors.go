package ranger

import "fmt"

// InvalidArgumentError occurs when a partition request cannot be planned
// because one of its parameters is out of range
type InvalidArgumentError struct {
	Field string
	Value any
}

// Error returns a textual representation of this InvalidArgumentError
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// DatabaseError occurs when a MIN/MAX aggregate query fails or returns
// something other than a single integer
type DatabaseError struct {
	Query string
	Err   error
}

// Error returns a textual representation of this DatabaseError
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

// Unwrap returns the driver error behind this DatabaseError
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

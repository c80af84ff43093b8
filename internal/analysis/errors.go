package analysis

import "fmt"

// InvalidColumnError indicates a referenced column is absent from the
// table schema. This is a configuration mismatch upstream; it is never
// retried.
type InvalidColumnError struct {
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("analysis: column %q not in table schema", e.Column)
}

// InsufficientDataError indicates an aggregation produced zero valid
// groups, so a balance target cannot be computed.
type InsufficientDataError struct {
	GroupBy string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("analysis: no non-null %q groups to balance against", e.GroupBy)
}

// DivisionByZeroError guards the percent-deviation computation against
// a zero average. ComputeBalance cannot produce one, but Compare can be
// invoked with a hand-built target, so the guard is explicit.
type DivisionByZeroError struct {
	Op string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("analysis: %s: balance average is zero", e.Op)
}

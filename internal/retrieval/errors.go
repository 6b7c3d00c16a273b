package retrieval

import "fmt"

// QueryError reports a vector backend failure for a single query phrase.
// A failing query aborts the whole retrieval pass: merging a partial result
// set would bias the ranking toward whichever queries happened to succeed.
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("retrieval query %q failed: %v", e.Query, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

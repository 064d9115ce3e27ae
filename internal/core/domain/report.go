package domain

// NodeError pairs a failure with the node that caused it.
type NodeError struct {
	Name string
	Err  error
}

// Report summarizes a make run. Partial progress is never lost: nodes listed
// in Built keep their new fingerprints even when later nodes failed.
type Report struct {
	// Built lists targets rebuilt this run, in completion order.
	Built []string
	// Skipped lists targets that were current and never dispatched.
	Skipped []string
	// Failed lists targets whose command failed, plus (under the
	// keep-going policy) targets blocked by an upstream failure.
	Failed []NodeError
}

// OK reports whether the run completed without failures.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

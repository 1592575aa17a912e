package errors

import "errors"

var (
	// ErrTransport marks backend or chat unreachability. The next scheduled
	// run is the retry mechanism; nothing retries within a run.
	ErrTransport = errors.New("transport error")
	// ErrNoAgreement marks a subscriber the billing backend rejects, e.g.
	// one without an active agreement. Re-running does not help.
	ErrNoAgreement = errors.New("no active billing agreement")
	ErrNotFound    = errors.New("resource not found")
)

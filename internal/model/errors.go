package model

import "errors"

// Error taxonomy from the pipeline's error handling design. Each sentinel is
// matched with errors.Is after being wrapped with fmt.Errorf("...: %w", ...).
var (
	// Configuration errors — fatal for the country.
	ErrConfigMissing    = errors.New("config missing")
	ErrPolicyInvalid    = errors.New("policy invalid")
	ErrThresholdMissing = errors.New("threshold missing")

	// Input errors.
	ErrSourceUnavailable = errors.New("source unavailable") // fatal
	ErrEnsembleDropped   = errors.New("ensemble dropped")   // recoverable
	ErrAdminLevelMissing = errors.New("admin level missing") // recoverable
	ErrBoundaryMissing   = errors.New("boundary missing")    // fatal

	// Transient I/O — retried with backoff, upgraded to fatal after budget.
	ErrRetryableIO = errors.New("retryable io error")

	// Publisher — fatal, aborts the country before events/process.
	ErrDownstreamRejected = errors.New("downstream rejected")
)

// Recoverable reports whether the error is one that lets the run continue
// with reduced data rather than aborting the country.
func Recoverable(err error) bool {
	return errors.Is(err, ErrEnsembleDropped) || errors.Is(err, ErrAdminLevelMissing)
}

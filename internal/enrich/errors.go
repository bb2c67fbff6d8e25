package enrich

// FailureKind classifies why an enrichment attempt failed.
type FailureKind string

const (
	// FailureNone means the enrichment succeeded.
	FailureNone FailureKind = ""
	// FailureInvalidInput means required input was missing or empty.
	FailureInvalidInput FailureKind = "invalid_input"
	// FailureFetch means the provider was unreachable, errored, or had no
	// data for the company. The partner record is left untouched.
	FailureFetch FailureKind = "fetch_failed"
	// FailureUpdate means the partner-record write was rejected. The cache
	// may already hold the fetched payload; that inconsistency is accepted.
	FailureUpdate FailureKind = "update_failed"
)

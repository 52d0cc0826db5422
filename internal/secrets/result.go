// internal/secrets/result.go
//
// Tagged outcome of a single secret lookup.
//
// Context
// -------
// A lookup ends in exactly one of three states:
//
//   - Found          – the store returned a non-empty payload.
//   - NotConfigured  – the caller passed an empty identifier; no call made.
//   - FetchFailed    – transport, authorization, or not-found failure.
//
// Neither NotConfigured nor FetchFailed is fatal here.  Callers decide, in
// plain code, whether to keep a default.  Validation is the only gate that
// may block startup.
//
// Notes
// -----
//   - Result is a small value type; copy it freely.
//   - Oxford commas, two spaces after periods.
package secrets

// Outcome enumerates the three lookup states.
type Outcome int

const (
	OutcomeNotConfigured Outcome = iota
	OutcomeFound
	OutcomeFetchFailed
)

// String returns the lowercase label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeFetchFailed:
		return "fetch_failed"
	default:
		return "not_configured"
	}
}

// Result carries the outcome plus either a value or a cause.
type Result struct {
	outcome Outcome
	value   string
	err     error
}

// Found wraps a successfully fetched value.
func Found(v string) Result { return Result{outcome: OutcomeFound, value: v} }

// NotConfigured marks a field that is not managed by the secret store.
func NotConfigured() Result { return Result{outcome: OutcomeNotConfigured} }

// FetchFailed records why a lookup could not produce a value.
func FetchFailed(cause error) Result { return Result{outcome: OutcomeFetchFailed, err: cause} }

// Outcome reports which state the lookup ended in.
func (r Result) Outcome() Outcome { return r.outcome }

// Value returns the payload and true only for Found.
func (r Result) Value() (string, bool) {
	return r.value, r.outcome == OutcomeFound
}

// Err returns the cause of a FetchFailed result, nil otherwise.
func (r Result) Err() error { return r.err }

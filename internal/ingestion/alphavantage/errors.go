package alphavantage

import (
	"errors"
	"fmt"

	"alphavantage-pipeline/internal/entity"
)

// FailureKind discriminates why a fetch failed.
type FailureKind string

const (
	KindTransport   FailureKind = "transport"
	KindTimeout     FailureKind = "timeout"
	KindMalformed   FailureKind = "malformed"
	KindUpstream    FailureKind = "upstream"
	KindRateLimited FailureKind = "rate_limited"
)

// FetchError is the discriminated failure value returned by the client.
// Fetch-level failures never propagate as panics or bare transport errors;
// callers branch on Kind.
type FetchError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("alphavantage: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("alphavantage: %s", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Status maps the failure kind onto the audit log status taxonomy.
func (e *FetchError) Status() entity.FetchStatus {
	switch e.Kind {
	case KindTimeout:
		return entity.FetchStatusTimeout
	case KindRateLimited:
		return entity.FetchStatusRateLimit
	default:
		return entity.FetchStatusError
	}
}

// AsFetchError unwraps err into a *FetchError if it is one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

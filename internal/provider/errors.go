package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a provider failure. The failover orchestrator treats every
// kind the same (try the next provider); the classification exists for
// logging and diagnostics.
type Kind int

const (
	KindTransport Kind = iota
	KindRateLimited
	KindQuotaExceeded
	KindMalformedResponse
	KindCapability
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimited:
		return "rate_limited"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindMalformedResponse:
		return "malformed_response"
	case KindCapability:
		return "capability"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is a classified failure from one provider attempt.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a classified provider error.
func NewError(providerID string, kind Kind, err error) *Error {
	return &Error{Provider: providerID, Kind: kind, Err: err}
}

// Errorf is NewError with a formatted message.
func Errorf(providerID string, kind Kind, format string, a ...any) *Error {
	return &Error{Provider: providerID, Kind: kind, Err: fmt.Errorf(format, a...)}
}

// IsKind reports whether err is a provider error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// quotaMarkers are substrings that indicate a billing/quota problem rather
// than a transient rate limit.
var quotaMarkers = []string{
	"quota",
	"billing",
	"insufficient_quota",
	"credit",
	"payment required",
}

func looksLikeQuota(message string) bool {
	lower := strings.ToLower(message)
	for _, m := range quotaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ClassifyStatus derives an error classification from an HTTP response.
// 429 and rate-limit markers map to KindRateLimited unless the body points at
// quota/billing, which maps to KindQuotaExceeded; any other non-2xx status is
// a transport error.
func ClassifyStatus(providerID string, status int, body string) *Error {
	switch {
	case looksLikeQuota(body):
		return Errorf(providerID, KindQuotaExceeded, "quota exceeded (status %d): %s", status, snippet(body))
	case status == 429:
		return Errorf(providerID, KindRateLimited, "rate limited (status 429): %s", snippet(body))
	case status == 402:
		return Errorf(providerID, KindQuotaExceeded, "quota exceeded (status 402): %s", snippet(body))
	default:
		return Errorf(providerID, KindTransport, "request failed (status %d): %s", status, snippet(body))
	}
}

// classifyCallErr maps a transport-level call error. Timeouts count as
// transport errors so the orchestrator advances to the next provider.
func classifyCallErr(providerID string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Errorf(providerID, KindTransport, "call timed out: %w", err)
	}
	return NewError(providerID, KindTransport, err)
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return body
}

package fdsnws

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = errors.New("fdsnws: malformed response")
	// ErrCapabilityDisabled matches every *CapabilityError.
	ErrCapabilityDisabled = errors.New("fdsnws: constraint group not available for this service")
	ErrBuilderConsumed    = errors.New("fdsnws: query builder already finished")
	ErrResponseTooLarge   = errors.New("fdsnws: response body too large")
)

// HTTPError is returned for any non-2xx response other than 404.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("fdsnws: http status %d (no body)", e.Status)
	}
	const maxBody = 512
	if len(body) > maxBody {
		cut := maxBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("fdsnws: http status %d: %s", e.Status, body)
}

// MalformedResponseError reports a response whose structure is missing an
// expected element. Path is dot-separated, e.g. "seiscomp.Inventory".
type MalformedResponseError struct {
	Path string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	switch {
	case e.Path == "" && e.Err != nil:
		return fmt.Sprintf("fdsnws: malformed response: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fdsnws: malformed response at %q: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("fdsnws: malformed response: missing %q", e.Path)
	}
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// CapabilityError records access to a constraint group the service does not
// enable.
type CapabilityError struct {
	Capability Capability
	Group      GroupName
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("fdsnws: %s constraints require the %q capability, which this service does not enable",
		e.Group, e.Capability)
}

func (e *CapabilityError) Is(target error) bool { return target == ErrCapabilityDisabled }

func malformed(path string, err error) error {
	return &MalformedResponseError{Path: path, Err: err}
}

package steamapi

import (
	"errors"
	"fmt"
)

// Sentinel values for errors.Is. Each typed error below matches exactly one of them.
//
//	profile, err := client.GetUserProfile(ctx, id)
//	switch {
//	case errors.Is(err, steamapi.ErrService):
//	    // Steam answered but refused the request
//	case errors.Is(err, steamapi.ErrHTTPStatus):
//	    // non-200 status
//	}
var (
	ErrDecode     = errors.New("steamapi: response decode failed")
	ErrService    = errors.New("steamapi: service returned an error")
	ErrHTTPStatus = errors.New("steamapi: unexpected http status")
	ErrPath       = errors.New("steamapi: response path not found")
)

// DecodeError reports a body that is not JSON or decodes to an empty value.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode response for endpoint %q: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("decode response for endpoint %q: empty value", e.Endpoint)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// ServiceError carries the message Steam placed under response.error.
type ServiceError struct {
	Endpoint string
	Message  string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("steam returned an error for endpoint %q: %s", e.Endpoint, e.Message)
}

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// HTTPStatusError reports any status code other than 200.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("steam returned http status %d for endpoint %q", e.StatusCode, e.Endpoint)
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// PathError names the first path segment that did not resolve.
type PathError struct {
	Endpoint string
	Segment  Segment
	// Position is the zero-based index of Segment within the requested path.
	Position int
}

func (e *PathError) Error() string {
	return fmt.Sprintf("response for endpoint %q has no %s at path position %d", e.Endpoint, e.Segment, e.Position)
}

func (e *PathError) Is(target error) bool { return target == ErrPath }

// Kind returns a short name for the failure stage of err, or "" when err is not
// one of the executor's typed errors.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrService):
		return "service"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrPath):
		return "path"
	default:
		return ""
	}
}

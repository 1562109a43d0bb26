package catalog

import "errors"

var (
	// ErrTransport is returned when a catalog cannot be reached (DNS, connection, timeout).
	ErrTransport = errors.New("catalog unreachable")

	// ErrStatus is returned when a catalog answers with a non-200 status.
	ErrStatus = errors.New("unexpected catalog status")

	// ErrDecode is returned when a catalog response is not the JSON we expect.
	ErrDecode = errors.New("malformed catalog response")
)

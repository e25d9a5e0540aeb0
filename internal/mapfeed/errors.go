package mapfeed

import "fmt"

// NetworkError is a transport failure: the request never produced a response
// (offline, DNS, timeout). Read paths recover by retaining the previously
// displayed set.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteQueryError is a store-side failure: the endpoint responded but
// signaled an error (malformed parameters, server fault).
type RemoteQueryError struct {
	Status  int
	Message string
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query failed: status %d: %s", e.Status, e.Message)
}

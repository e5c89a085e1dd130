package query

import "fmt"

// DuplicateClientError rejects reuse of a client key. Keys are stable ids:
// once assigned they are never reused, even after removal.
type DuplicateClientError struct {
	Key string
}

func (e *DuplicateClientError) Error() string {
	return fmt.Sprintf("client key %q already exists", e.Key)
}

// DuplicateServiceError rejects registering a service twice.
type DuplicateServiceError struct {
	Key     string
	Service string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("client %q already has service %q", e.Key, e.Service)
}

// AlreadyRemovedError rejects removing a client twice.
type AlreadyRemovedError struct {
	Key string
}

func (e *AlreadyRemovedError) Error() string {
	return fmt.Sprintf("client %q was already removed", e.Key)
}

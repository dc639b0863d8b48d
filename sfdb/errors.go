package sfdb

import (
	"errors"
	"fmt"
)

var ErrNoIds = errors.New("at least one id needs to be provided")

// ConnectionError is returned when the descriptor, endpoint or login step of establishing a
// session fails. Nothing is cached when it occurs, the next call tries again.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to salesforce database: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// InvalidIdError is returned for an id whose prefix matches no sobject
type InvalidIdError struct {
	Id     string
	Prefix string
}

func (e *InvalidIdError) Error() string {
	return fmt.Sprintf("invalid id: prefix %s of id %s could not be matched to a record type", e.Prefix, e.Id)
}

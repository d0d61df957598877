package engine

import "fmt"

// DataIntegrityError reports a catalog row the engine refuses to compute
// with, naming the offending blueprint. It aborts the whole computation.
type DataIntegrityError struct {
	BlueprintTypeID int64
	Reason          string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: blueprint %d: %s", e.BlueprintTypeID, e.Reason)
}

// ConfigurationError reports an invalid parameter before any row is computed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

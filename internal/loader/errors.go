package loader

import "fmt"

// MalformedRecordError describes a single rejected input row. Rejection is
// recoverable at record granularity; loaders count these and keep going.
type MalformedRecordError struct {
	Table  string
	Row    int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: row %d: %s", e.Table, e.Row, e.Reason)
}

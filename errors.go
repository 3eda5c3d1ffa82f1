package starschema

import (
	"fmt"

	"github.com/pkg/errors"
)

// IngestError is returned when a dataset location can't be read, or holds no
// parsable records.
type IngestError struct {
	Dataset string
	Err     error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingesting %s: %v", e.Dataset, e.Err)
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *IngestError) Cause() error  { return e.Err }
func (e *IngestError) Unwrap() error { return e.Err }

// SchemaError is returned when a required field is missing from every record
// of a dataset. A field which is missing or null on some records only is not
// an error; those rows are filtered by the extractors.
type SchemaError struct {
	Dataset string
	Fields  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: required fields absent from every record: %v", e.Dataset, e.Fields)
}

// WriteError is returned when a table can't be written to the destination.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing table %s: %v", e.Table, e.Err)
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *WriteError) Cause() error  { return e.Err }
func (e *WriteError) Unwrap() error { return e.Err }

func ingestErr(dataset string, err error, format string, args ...interface{}) error {
	if err == nil {
		err = errors.Errorf(format, args...)
	} else {
		err = errors.Wrapf(err, format, args...)
	}
	return &IngestError{Dataset: dataset, Err: err}
}

func writeErr(table string, err error, msg string) error {
	return &WriteError{Table: table, Err: errors.Wrap(err, msg)}
}

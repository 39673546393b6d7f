package domain

import (
	"fmt"
	"strings"
	"time"
)

// FetchError reports that a day's source file could not be retrieved.
// Fatal to the load run: the dataset is static, so a missing day means a
// broken source, not a gap to skip.
type FetchError struct {
	Date time.Time
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", FileName(e.Date), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that a day's file was retrieved but is not parseable
// as a table.
type ParseError struct {
	Date time.Time
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", FileName(e.Date), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaMismatchError reports that a day's column set matches neither the
// legacy nor the current schema variant. Hard stop, never retried — it
// indicates an unanticipated upstream format change.
type SchemaMismatchError struct {
	Date   time.Time
	Header []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: columns [%s] match neither schema variant",
		FileName(e.Date), strings.Join(e.Header, ", "))
}

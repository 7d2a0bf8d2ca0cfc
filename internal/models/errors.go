package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult means the data had the right shape but nothing to display
var ErrEmptyResult = errors.New("no displayable data")

// SchemaError is returned when the date or category column of a record set
// cannot be identified
type SchemaError struct {
	Column string
	Fields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("cannot find %s column in fields [%s]", e.Column, strings.Join(e.Fields, ", "))
}

// FetchError is returned when the upstream API cannot be reached, answers with
// a non-success status or sends an unreadable body
type FetchError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != 200 {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: request failed", e.Endpoint)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

package report

import (
	"errors"
	"fmt"
)

// ErrReportUnavailable marks failures after which no metrics can be shown.
// Callers should offer a retry; it is never returned for empty data.
var ErrReportUnavailable = errors.New("report metrics unavailable")

// FetchError is a failed read from a session or station source. Pages
// fetched before the failure are discarded.
type FetchError struct {
	Source string
	Page   int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("fetch %s page %d: %v", e.Source, e.Page, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrReportUnavailable
}

package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreachable matches every failure to fetch or connect
	ErrSourceUnreachable = errors.New("source unreachable")
	// ErrTransformFault matches every failure of a message transform
	ErrTransformFault = errors.New("message transform fault")
	// ErrUnsupportedSource is returned for an address no transport handles
	ErrUnsupportedSource = errors.New("unsupported source")
)

// FallbackLine replaces a live message whose transform failed
const FallbackLine = "Something went wrong! Please try again."

// SourceError is a fetch or connection failure for URL
type SourceError struct {
	URL string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is makes every SourceError match ErrSourceUnreachable
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnreachable
}

// TransformError is a failed or panicking message transform
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("format message: %v", e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Is makes every TransformError match ErrTransformFault
func (e *TransformError) Is(target error) bool {
	return target == ErrTransformFault
}

// ErrorDocument is the text shown in place of the log when the source
// cannot be reached
func ErrorDocument(err error, url string) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
		var se *SourceError
		if errors.As(err, &se) && se.Err != nil {
			reason = se.Err.Error()
		}
	}
	return reason + "\n" +
		"An error occurred attempting to load the provided log.\n" +
		"Please check the URL and ensure it is reachable.\n" +
		url
}

package errors

import (
	"errors"
	"fmt"
)

// Kind identifies why an acquisition attempt did not succeed
type Kind string

const (
	KindNetwork     Kind = "network"
	KindServerError Kind = "server_error"
	KindNotFound    Kind = "not_found"
	KindDecode      Kind = "decode"
	KindExtractor   Kind = "extractor"
	KindGallery     Kind = "gallery"
	KindIO          Kind = "io"
	KindUnknown     Kind = "unknown"
)

// Error is the failure carried by an unsuccessful acquisition
type Error struct {
	Kind    Kind
	URL     string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind wrapping err
func New(kind Kind, url string, err error) *Error {
	return &Error{Kind: kind, URL: url, Err: err}
}

// Newf creates an Error of the given kind with a formatted message
func Newf(kind Kind, url string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, URL: url, Message: fmt.Sprintf(format, args...)}
}

// FromStatus maps a non-success HTTP status code to an Error
func FromStatus(url string, statusCode int) *Error {
	kind := KindServerError
	switch {
	case statusCode == 404 || statusCode == 410:
		kind = KindNotFound
	case statusCode >= 400 && statusCode < 500:
		kind = KindUnknown
	}
	return &Error{
		Kind:    kind,
		URL:     url,
		Code:    statusCode,
		Message: fmt.Sprintf("unexpected status %d", statusCode),
	}
}

// KindOf returns the Kind of err, or KindUnknown when err carries none
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As converts any error into an *Error, keeping an existing kind
func As(url string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.URL == "" {
			e.URL = url
		}
		return e
	}
	return New(KindUnknown, url, err)
}

// IsTransient reports whether a failure of this kind may be caused by losing connectivity
func IsTransient(kind Kind) bool {
	switch kind {
	case KindNetwork, KindServerError, KindUnknown:
		return true
	default:
		return false
	}
}

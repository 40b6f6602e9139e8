package api

import (
	"errors"
	"fmt"
)

// Sentinels for matching with errors.Is.
var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrNetwork         = errors.New("network error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrDecoding        = errors.New("decoding error")
)

// NetworkError reports a transport-level failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// InvalidResponseError reports a status code outside 200-299.
type InvalidResponseError struct {
	StatusCode int
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: status %d", e.StatusCode)
}

// Is matches ErrInvalidResponse.
func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidResponse }

// DecodingError reports a body that does not match the expected shape.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// Is matches ErrDecoding.
func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }

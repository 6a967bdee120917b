package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks a per-source fetch or parse failure.
	ErrFetch = errors.New("feed fetch failed")
	// ErrMissingTimestamp marks an entry without any usable published/updated time.
	ErrMissingTimestamp = errors.New("entry has no publish timestamp")
	// ErrNoEndpoint is returned when no delivery endpoint is configured.
	ErrNoEndpoint = errors.New("no delivery endpoint configured")
	// ErrDelivery marks a failed notification for a single item.
	ErrDelivery = errors.New("delivery failed")
)

// FetchError wraps the failure of one feed source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// DeliveryError wraps the failure to notify about one item.
type DeliveryError struct {
	Link string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.Link, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

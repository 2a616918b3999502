// Package entity defines the records and errors shared between the use case and its adapters.
// URL is the single persisted record: a short code mapped to a target URL together with
// its access counter and timestamps.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned by a store when a record with the same short code is already saved.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when no record exists for the requested short code.
	ErrURLNotFound = errors.New("url not found")
)

// URL represents a shortened URL.
type URL struct {
	ID          int64     // ID is assigned by the store on insert and never reused.
	ShortCode   string    // ShortCode identifies the record; immutable after creation.
	OriginalURL string    // OriginalURL is the redirect target, stored as given.
	AccessCount int64     // AccessCount is the number of successful resolutions.
	CreatedAt   time.Time // CreatedAt is set once on insert.
	UpdatedAt   time.Time // UpdatedAt is refreshed on every mutation.
}

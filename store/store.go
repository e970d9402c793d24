// Package store persists orders and dentists with GORM and keeps a live
// snapshot feed of each collection up to date after every write.
package store

import "errors"

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

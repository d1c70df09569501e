// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

// ErrNotFound reports that a requested source file is not present.
var ErrNotFound = errors.New("not found")

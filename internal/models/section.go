// Package models defines the domain types for Perthro.
package models

import "time"

// Section represents one closed marker block extracted from a document.
//
// A bare marker (`=foo` … `=cut`) produces a Section whose Name is the
// marker token and whose List is empty. A grouped marker (`=foo bar` …
// `=cut`) produces a Section with List set to the token and Name set to
// the argument. List == "" therefore means "absent".
type Section struct {
	// Index is the 1-based position among all blocks in the document,
	// assigned in the order blocks close. It is never renumbered, even
	// after sections are plucked from a session.
	Index int `json:"index"`

	// Name is the marker token (bare form) or the trimmed argument
	// (grouped form).
	Name string `json:"name,omitempty"`

	// List is the marker token when the block was opened with an
	// argument; empty for bare markers.
	List string `json:"list,omitempty"`

	// Data holds the literal lines between the opener and its closer,
	// escape prefixes stripped, edge blank lines trimmed.
	Data []string `json:"data"`
}

// FileMetadata is a lightweight representation returned by storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

package cache

import "time"

// Entry records one emitted build file
type Entry struct {
	// Path is the file path as written, relative to the working directory
	Path string `json:"path"`

	// Hash is the SHA256 of the content last written
	Hash string `json:"hash"`

	// Configuration is the build configuration the file belongs to
	Configuration string `json:"configuration"`

	// Timestamp when the file was last written
	Timestamp time.Time `json:"timestamp"`
}

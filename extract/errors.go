package extract

import "errors"

var (
	// ErrFileNotFound indicates the source path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates a source the extractor cannot read.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedElements indicates an element dump that failed to parse.
	ErrMalformedElements = errors.New("malformed element dump")

	// ErrNoContent indicates a source that yielded no content units.
	ErrNoContent = errors.New("no content extracted")
)

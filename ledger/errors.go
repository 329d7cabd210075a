package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoText is returned by a TextExtractor that produced nothing usable.
	// The file is left unmarked so a later run retries it.
	ErrNoText = errors.New("no text extracted")

	// ErrIngestInProgress is returned when an ingest run is requested while
	// another one is still running.
	ErrIngestInProgress = errors.New("ingest already in progress")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// FileError is a failure scoped to one input file. It never stops the run.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// IsFileError reports whether err only concerns a single input file.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

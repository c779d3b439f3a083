package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsafePath is returned when an archive entry would land outside
	// the destination directory.
	ErrUnsafePath = errors.New("archive entry escapes destination")

	// ErrUnknownArchive is returned for an ArchiveKind outside the known set.
	ErrUnknownArchive = errors.New("unknown archive kind")
)

// FetchError describes a failed download or unpack.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// retryable reports whether a later attempt could succeed.
func (e *FetchError) retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

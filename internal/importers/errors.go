package importers

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, please upload a .vcf or .csv file")
	ErrNoFileProvided    = errors.New("no file provided")
	ErrNoValidContacts   = errors.New("no valid contacts found in file")
	ErrImportInProgress  = errors.New("another import is already in progress")
	ErrInsertFailed      = errors.New("failed to insert contacts")
)

// LimitError reports a quota rejection. Reached is set when the user cannot
// add any contact at all; otherwise CanImport says how many more would fit.
type LimitError struct {
	Reached      bool
	CurrentCount int
	MaxAllowed   int
	Tier         string
	CanImport    int
}

func (e *LimitError) Error() string {
	if e.Reached {
		return fmt.Sprintf("contact limit reached (%d/%d), upgrade your plan to add more contacts", e.CurrentCount, e.MaxAllowed)
	}
	return fmt.Sprintf("import would exceed your contact limit, you can import %d more contacts", e.CanImport)
}

// IsRejection reports whether err refuses an import for a reason the user can
// act on (format, empty file, quota, a concurrent import) rather than a
// server failure.
func IsRejection(err error) bool {
	var limitErr *LimitError
	switch {
	case errors.As(err, &limitErr):
		return true
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrNoFileProvided),
		errors.Is(err, ErrNoValidContacts), errors.Is(err, ErrImportInProgress):
		return true
	}
	return false
}

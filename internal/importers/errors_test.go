package importers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"no error", nil, false},
		{"unsupported format", ErrUnsupportedFormat, true},
		{"no file", ErrNoFileProvided, true},
		{"no valid contacts", ErrNoValidContacts, true},
		{"import in progress", ErrImportInProgress, true},
		{"quota", &LimitError{Reached: true}, true},
		{"wrapped quota", fmt.Errorf("import: %w", &LimitError{CanImport: 2}), true},
		{"strict insert failure", ErrInsertFailed, false},
		{"database failure", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRejection(tt.err))
		})
	}
}

package metadata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnclassifiedColumn matches every *UnclassifiedColumnError.
	ErrUnclassifiedColumn = errors.New("unclassified column")
	// ErrInvalidOverride matches every *InvalidOverrideError.
	ErrInvalidOverride = errors.New("invalid override")
)

// UnclassifiedColumnError reports a column whose storage kind matched no type
// rule and that no override classified. The column is left out of the type
// and role groupings.
type UnclassifiedColumnError struct {
	Column string
	Kind   string
}

func (e *UnclassifiedColumnError) Error() string {
	return fmt.Sprintf("unclassified column %q (storage kind %s)", e.Column, e.Kind)
}

func (e *UnclassifiedColumnError) Is(target error) bool {
	return target == ErrUnclassifiedColumn
}

// InvalidOverrideError reports a schema directive that could not be applied.
// Only that directive is skipped.
type InvalidOverrideError struct {
	Index  int    // position of the directive in the schema
	Column string // column the directive names
	Field  string // "dataType" or "dataModel"
	Value  string // offending label, if any
	Reason string
}

func (e *InvalidOverrideError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("invalid override #%d for %q", e.Index, e.Column))
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("(%s=%s)", e.Field, e.Value))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

func (e *InvalidOverrideError) Is(target error) bool {
	return target == ErrInvalidOverride
}
